package users

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/middleware"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errInsufficientBalance = errors.New("insufficient balance")
	errBelowMinimum        = errors.New("below minimum withdrawal")
)

type withdrawRequest struct {
	Amount        float64 `json:"amount" validate:"required"`
	BankName      string  `json:"bank_name" validate:"required"`
	AccountNumber string  `json:"account_number" validate:"required"`
	AccountTitle  string  `json:"account_title" validate:"required"`
}

func minWithdrawal() float64 {
	if s := os.Getenv("MIN_WITHDRAWAL"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			return v
		}
	}
	return 500
}

// debitForWithdrawal validates the requested amount against the wallet and
// applies the immediate deduction. The wallet is left untouched on any error;
// the caller persists the new balance inside the locking transaction.
func debitForWithdrawal(user *models.User, amount, min float64) error {
	if amount < min {
		return errBelowMinimum
	}
	if user.WalletBalance < amount {
		return errInsufficientBalance
	}
	user.WalletBalance = utils.RoundMoney(user.WalletBalance - amount)
	return nil
}

// Withdraw places a withdrawal request. The amount is deducted from the wallet
// immediately so it cannot be spent while the request is pending; a rejection
// later refunds it. The ledger entry stays pending until an admin decides.
func Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req withdrawRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	min := minWithdrawal()
	if req.Amount < min {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: fmt.Sprintf("Minimum withdrawal is PKR %.2f", min),
		})
		return
	}

	var entry models.Transaction
	var userName string

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}
		if err := debitForWithdrawal(&user, req.Amount, min); err != nil {
			return err
		}
		userName = user.Name

		if err := tx.Model(&user).Update("wallet_balance", user.WalletBalance).Error; err != nil {
			return err
		}

		desc := fmt.Sprintf("Withdrawal to %s", req.BankName)
		entry = models.Transaction{
			UserID:        userID,
			Type:          models.TxWithdrawal,
			Amount:        req.Amount,
			Status:        models.TxPending,
			Description:   &desc,
			ReferenceID:   utils.GenerateReferenceID(userID),
			BankName:      &req.BankName,
			AccountNumber: &req.AccountNumber,
			AccountTitle:  &req.AccountTitle,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		note := models.Notification{
			UserID:  userID,
			Message: fmt.Sprintf("Withdrawal request for PKR %.2f submitted. Awaiting approval.", req.Amount),
		}
		return tx.Create(&note).Error
	})

	if errors.Is(err, errInsufficientBalance) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Insufficient wallet balance",
		})
		return
	}
	if errors.Is(err, errBelowMinimum) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: fmt.Sprintf("Minimum withdrawal is PKR %.2f", min),
		})
		return
	}
	if err != nil {
		log.Printf("[wallet] withdrawal request failed for user %d: %v", userID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	go utils.SendWithdrawalRequestEmail(userName, req.BankName, req.Amount)

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Withdrawal request submitted",
		Data:    entry,
	})
}

// WalletHistory returns the user's full ledger, newest first.
func WalletHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var txs []models.Transaction
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Wallet history",
		Data:    txs,
	})
}
