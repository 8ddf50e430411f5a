package admins

import (
	"net/http"
	"strconv"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"github.com/gorilla/mux"
)

// ListUsers returns all user accounts with pagination.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	q := database.DB.Model(&models.User{}).Where("role = ?", models.RoleUser)
	if search := r.URL.Query().Get("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	q.Count(&total)

	var list []models.User
	if err := q.Preload("Store").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&list).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	for i := range list {
		list[i].Password = ""
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Users",
		Data: map[string]interface{}{
			"users":    list,
			"total":    total,
			"page":     page,
			"per_page": perPage,
		},
	})
}

// GetUser returns one user with their purchases and ledger.
func GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var user models.User
	if err := database.DB.Preload("Store").First(&user, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	user.Password = ""

	var purchases []models.Purchase
	database.DB.Where("user_id = ?", id).Order("created_at DESC").Find(&purchases)

	var txs []models.Transaction
	database.DB.Where("user_id = ?", id).Order("created_at DESC").Limit(50).Find(&txs)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "User detail",
		Data: map[string]interface{}{
			"user":         user,
			"purchases":    purchases,
			"transactions": txs,
		},
	})
}
