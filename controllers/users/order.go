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
	"github.com/Ham-irza/resell-hub/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type buyProductRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"`
}

// BuyProduct places a product order. Product stock is deducted, an order-kind
// purchase is created (entering the same daily sales simulation as plans), the
// deposit is recorded and the referral commission paid, all in one transaction.
// Unlike plans, a user may hold any number of concurrent orders.
func BuyProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req buyProductRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	var created models.Purchase
	errNoStock := errors.New("insufficient stock")
	errInactive := errors.New("product inactive")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, req.ProductID).Error; err != nil {
			return err
		}
		if product.Status != "Active" {
			return errInactive
		}
		if product.Quantity < qty {
			return errNoStock
		}

		if err := tx.Model(&product).Update("quantity", product.Quantity-qty).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}

		invested := utils.RoundMoney(product.Price * float64(qty))
		profit := utils.RoundMoney(invested * (product.ReturnRate / 100.0))
		fulfillment := models.FulfillmentProcessing
		now := time.Now()
		created = models.Purchase{
			UserID:          userID,
			Kind:            models.PurchaseKindOrder,
			ItemName:        product.Name,
			UnitPrice:       product.Price,
			ReturnRate:      product.ReturnRate,
			DailyMinSales:   product.DailyMinSales,
			DailyMaxSales:   product.DailyMaxSales,
			InvestedAmount:  invested,
			ExpectedProfit:  profit,
			TotalStock:      qty,
			Status:          models.PurchaseActive,
			Fulfillment:     &fulfillment,
			ReferenceID:     utils.GenerateReferenceID(userID),
			StartedAt:       now,
			LastProcessedAt: now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		desc := fmt.Sprintf("Order: %dx %s", qty, product.Name)
		deposit := models.Transaction{
			UserID:      userID,
			Type:        models.TxDeposit,
			Amount:      invested,
			Status:      models.TxApproved,
			Description: &desc,
			ReferenceID: utils.GenerateReferenceID(userID),
		}
		if err := tx.Create(&deposit).Error; err != nil {
			return err
		}

		if err := payReferralCommission(tx, &user, invested, product.Name); err != nil {
			return err
		}

		note := models.Notification{
			UserID:  userID,
			Message: fmt.Sprintf("Order placed: %dx %s. Reselling has started.", qty, product.Name),
		}
		return tx.Create(&note).Error
	})

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Product not found"})
		return
	case errors.Is(err, errInactive):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "This product is no longer available"})
		return
	case errors.Is(err, errNoStock):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Not enough stock for this order"})
		return
	case err != nil:
		log.Printf("[order] buy product failed for user %d: %v", userID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	go sendPurchaseEmail(userID, created.ItemName, created.InvestedAmount)

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Order placed",
		Data:    created,
	})
}

// ListOrders returns the user's product orders, newest first.
func ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var orders []models.Purchase
	if err := database.DB.
		Where("user_id = ? AND kind = ?", userID, models.PurchaseKindOrder).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Order history",
		Data:    orders,
	})
}
