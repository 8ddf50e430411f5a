package admins

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/middleware"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type withdrawalDecision struct {
	Action string `json:"action" validate:"required"` // approve | reject
	Reason string `json:"reason"`
}

var errNotPending = errors.New("withdrawal already decided")

// settleWithdrawal applies one decision to a pending withdrawal, returning the
// refund credited to the owner's wallet on rejection. An entry that has
// already been decided is refused so each withdrawal settles exactly once.
// The caller persists the mutated entry and owner inside the locking
// transaction.
func settleWithdrawal(entry *models.Transaction, owner *models.User, action string) (refund float64, err error) {
	if entry.Status != models.TxPending {
		return 0, errNotPending
	}
	if action == "approve" {
		entry.Status = models.TxApproved
		return 0, nil
	}
	entry.Status = models.TxRejected
	owner.WalletBalance = utils.RoundMoney(owner.WalletBalance + entry.Amount)
	return entry.Amount, nil
}

// ListWithdrawals returns withdrawal requests, optionally filtered by status.
func ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	q := database.DB.Where("type = ?", models.TxWithdrawal)
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var withdrawals []models.Transaction
	if err := q.Order("created_at DESC").Find(&withdrawals).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Withdrawal requests",
		Data:    withdrawals,
	})
}

// DecideWithdrawal approves or rejects a pending withdrawal. Each record gets
// exactly one decision: the row is locked, must still be pending, and the
// status write plus any refund happen in one transaction. A rejection returns
// the reserved amount to the wallet; an approval emails the user.
func DecideWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid withdrawal id"})
		return
	}

	var req withdrawalDecision
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Action must be approve or reject"})
		return
	}

	var entry models.Transaction
	var owner models.User

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("type = ?", models.TxWithdrawal).
			First(&entry, id).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&owner, entry.UserID).Error; err != nil {
			return err
		}

		refund, err := settleWithdrawal(&entry, &owner, req.Action)
		if err != nil {
			return err
		}

		if err := tx.Model(&entry).Update("status", entry.Status).Error; err != nil {
			return err
		}

		if entry.Status == models.TxApproved {
			note := models.Notification{
				UserID:  owner.ID,
				Message: fmt.Sprintf("Your withdrawal of PKR %.2f has been approved.", entry.Amount),
			}
			return tx.Create(&note).Error
		}

		// Rejection returns the amount reserved at request time.
		if err := tx.Model(&owner).Update("wallet_balance", owner.WalletBalance).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("Your withdrawal of PKR %.2f was rejected and refunded to your wallet.", refund)
		if req.Reason != "" {
			msg = fmt.Sprintf("%s Reason: %s", msg, req.Reason)
		}
		note := models.Notification{UserID: owner.ID, Message: msg}
		return tx.Create(&note).Error
	})

	switch {
	case errors.Is(txErr, gorm.ErrRecordNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Withdrawal not found"})
		return
	case errors.Is(txErr, errNotPending):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "This withdrawal has already been decided"})
		return
	case txErr != nil:
		log.Printf("[withdrawals] decision failed for withdrawal %d: %v", id, txErr)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	if entry.Status == models.TxApproved {
		go utils.SendWithdrawalApprovedEmail(owner.Email, owner.Name, entry.Amount)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Withdrawal " + entry.Status,
		Data:    entry,
	})
}
