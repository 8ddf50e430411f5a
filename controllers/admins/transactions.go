package admins

import (
	"net/http"
	"strconv"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"
)

// ListTransactions returns the full ledger with optional type/status filters.
func ListTransactions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	q := database.DB.Model(&models.Transaction{})
	if t := r.URL.Query().Get("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if s := r.URL.Query().Get("status"); s != "" {
		q = q.Where("status = ?", s)
	}
	if u := r.URL.Query().Get("user_id"); u != "" {
		q = q.Where("user_id = ?", u)
	}

	var total int64
	q.Count(&total)

	var txs []models.Transaction
	if err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&txs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Transactions",
		Data: map[string]interface{}{
			"transactions": txs,
			"total":        total,
			"page":         page,
			"per_page":     perPage,
		},
	})
}
