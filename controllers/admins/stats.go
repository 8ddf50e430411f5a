package admins

import (
	"net/http"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"
)

// Stats returns the admin dashboard totals.
func Stats(w http.ResponseWriter, r *http.Request) {
	var totalUsers int64
	database.DB.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&totalUsers)

	var activePurchases int64
	database.DB.Model(&models.Purchase{}).Where("status = ?", models.PurchaseActive).Count(&activePurchases)

	sum := func(txType, status string) float64 {
		var v float64
		database.DB.Model(&models.Transaction{}).
			Where("type = ? AND status = ?", txType, status).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&v)
		return v
	}

	var pendingWithdrawals int64
	database.DB.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TxWithdrawal, models.TxPending).
		Count(&pendingWithdrawals)

	var recent []models.Transaction
	database.DB.Order("created_at DESC").Limit(20).Find(&recent)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Dashboard stats",
		Data: map[string]interface{}{
			"total_users":                totalUsers,
			"active_purchases":           activePurchases,
			"total_deposited":            utils.RoundMoney(sum(models.TxDeposit, models.TxApproved)),
			"total_paid_out":             utils.RoundMoney(sum(models.TxProfitPayout, models.TxApproved)),
			"total_withdrawn":            utils.RoundMoney(sum(models.TxWithdrawal, models.TxApproved)),
			"pending_withdrawal_count":   pendingWithdrawals,
			"pending_withdrawal_amount":  utils.RoundMoney(sum(models.TxWithdrawal, models.TxPending)),
			"total_referral_commissions": utils.RoundMoney(sum(models.TxReferralBonus, models.TxApproved)),
			"recent_transactions":        recent,
		},
	})
}
