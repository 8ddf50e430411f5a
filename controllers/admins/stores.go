package admins

import (
	"net/http"
	"strconv"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/middleware"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"github.com/gorilla/mux"
)

type storeRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CreateStore adds a store users can select at registration.
func CreateStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	store := models.Store{Name: req.Name, Description: req.Description}
	if err := database.DB.Create(&store).Error; err != nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "A store with this name already exists"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Store created",
		Data:    store,
	})
}

// UpdateStore renames or redescribes a store.
func UpdateStore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid store id"})
		return
	}

	var store models.Store
	if err := database.DB.First(&store, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Store not found"})
		return
	}

	var req storeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	store.Name = req.Name
	store.Description = req.Description

	if err := database.DB.Save(&store).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Store updated",
		Data:    store,
	})
}

// DeleteStore removes a store. Users keep their store_id until they reselect;
// the FK is nullable so existing accounts are unaffected.
func DeleteStore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid store id"})
		return
	}

	res := database.DB.Delete(&models.Store{}, id)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Store not found"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Store deleted",
	})
}
