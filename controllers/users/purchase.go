package users

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/middleware"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/simulation"
	"github.com/Ham-irza/resell-hub/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// engine is the shared sales-simulation engine, injected from main at startup.
var engine *simulation.Engine

// SetEngine wires the simulation engine used by the catch-up endpoints.
func SetEngine(e *simulation.Engine) {
	engine = e
}

// referralCommissionRate is the share of the invested amount paid to the
// buyer's referrer on every purchase.
const referralCommissionRate = 0.05

type buyPlanRequest struct {
	PlanID uint `json:"plan_id" validate:"required"`
}

var errActivePlan = errors.New("active plan exists")

// ensureNoActivePlan enforces the one-active-cycle rule given the count of
// the user's active plan purchases. The caller counts under a user row lock
// so concurrent buys serialize on the check.
func ensureNoActivePlan(activeCount int64) error {
	if activeCount > 0 {
		return errActivePlan
	}
	return nil
}

// newPlanPurchase snapshots the plan into a fresh active purchase so later
// plan edits never change the terms of a running cycle.
func newPlanPurchase(userID uint, plan *models.Plan, now time.Time) models.Purchase {
	return models.Purchase{
		UserID:            userID,
		Kind:              models.PurchaseKindPlan,
		ItemName:          plan.Name,
		UnitPrice:         plan.Price,
		ReturnRate:        plan.ReturnRate,
		DailyMinSales:     plan.DailyMinSales,
		DailyMaxSales:     plan.DailyMaxSales,
		InvestedAmount:    plan.Price,
		ExpectedProfit:    utils.RoundMoney(plan.ExpectedProfit()),
		TotalStock:        plan.TotalStock,
		AccumulatedReturn: 0,
		Status:            models.PurchaseActive,
		ReferenceID:       utils.GenerateReferenceID(userID),
		StartedAt:         now,
		LastProcessedAt:   now,
	}
}

// BuyPlan starts a plan subscription cycle. The plan is snapshotted into the
// purchase, the deposit is recorded, and the referrer's commission is credited,
// all in one transaction. Only one plan cycle may be active per user.
func BuyPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req buyPlanRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var plan models.Plan
	if err := database.DB.First(&plan, req.PlanID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Plan not found"})
		return
	}
	if plan.Status != "Active" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "This plan is no longer available"})
		return
	}

	var created models.Purchase

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the user row so two concurrent buys serialize on the
		// one-active-plan check.
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Purchase{}).
			Where("user_id = ? AND kind = ? AND status = ?", userID, models.PurchaseKindPlan, models.PurchaseActive).
			Count(&count).Error; err != nil {
			return err
		}
		if err := ensureNoActivePlan(count); err != nil {
			return err
		}

		created = newPlanPurchase(userID, &plan, time.Now())
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		desc := fmt.Sprintf("Plan purchase: %s", plan.Name)
		deposit := models.Transaction{
			UserID:      userID,
			Type:        models.TxDeposit,
			Amount:      plan.Price,
			Status:      models.TxApproved,
			Description: &desc,
			ReferenceID: utils.GenerateReferenceID(userID),
		}
		if err := tx.Create(&deposit).Error; err != nil {
			return err
		}

		if err := payReferralCommission(tx, &user, plan.Price, plan.Name); err != nil {
			return err
		}

		note := models.Notification{
			UserID:  userID,
			Message: fmt.Sprintf("Your %s cycle has started. %d units to sell.", plan.Name, plan.TotalStock),
		}
		return tx.Create(&note).Error
	})

	if errors.Is(err, errActivePlan) {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{
			Success: false,
			Message: "You already have an active plan. Complete it before starting a new one.",
		})
		return
	}
	if err != nil {
		log.Printf("[purchase] buy plan failed for user %d: %v", userID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	go sendPurchaseEmail(userID, created.ItemName, created.InvestedAmount)

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Plan purchased",
		Data:    created,
	})
}

// ActivePurchase returns the user's active plan purchase after applying every
// owed simulation day, so the record is current as of this request.
func ActivePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var p models.Purchase
	err := database.DB.
		Where("user_id = ? AND kind = ? AND status = ?", userID, models.PurchaseKindPlan, models.PurchaseActive).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
			Success: true,
			Message: "No active plan",
			Data:    nil,
		})
		return
	}
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	current, err := engine.Evaluate(r.Context(), p.ID)
	if err != nil {
		// Serve the stale record rather than failing the page; the sweep
		// will settle it.
		log.Printf("[purchase] catch-up failed for purchase %d: %v", p.ID, err)
		current = p
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Active plan",
		Data:    current,
	})
}

// ListPurchases returns the user's plan purchase history, newest first.
func ListPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var purchases []models.Purchase
	if err := database.DB.
		Where("user_id = ? AND kind = ?", userID, models.PurchaseKindPlan).
		Order("created_at DESC").
		Find(&purchases).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Purchase history",
		Data:    purchases,
	})
}

// payReferralCommission credits the buyer's referrer with 5% of the amount.
// The buyer's user row is already locked by the caller; the referrer's row is
// locked here. No-op when the buyer has no referrer.
func payReferralCommission(tx *gorm.DB, buyer *models.User, amount float64, itemName string) error {
	if buyer.ReferredBy == nil {
		return nil
	}
	var referrer models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&referrer, *buyer.ReferredBy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	bonus := utils.RoundMoney(amount * referralCommissionRate)
	if bonus <= 0 {
		return nil
	}

	newBalance := utils.RoundMoney(referrer.WalletBalance + bonus)
	if err := tx.Model(&referrer).Update("wallet_balance", newBalance).Error; err != nil {
		return err
	}

	desc := fmt.Sprintf("Referral commission from %s's purchase of %s", buyer.Name, itemName)
	entry := models.Transaction{
		UserID:      referrer.ID,
		Type:        models.TxReferralBonus,
		Amount:      bonus,
		Status:      models.TxApproved,
		Description: &desc,
		ReferenceID: utils.GenerateReferenceID(referrer.ID),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	note := models.Notification{
		UserID:  referrer.ID,
		Message: fmt.Sprintf("You earned PKR %.2f referral commission from %s.", bonus, buyer.Name),
	}
	return tx.Create(&note).Error
}

func sendPurchaseEmail(userID uint, itemName string, amount float64) {
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		log.Printf("[purchase] load user %d for email failed: %v", userID, err)
		return
	}
	utils.SendPurchaseEmail(user.Email, user.Name, itemName, amount)
}
