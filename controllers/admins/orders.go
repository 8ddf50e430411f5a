package admins

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/middleware"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"github.com/gorilla/mux"
)

type fulfillmentRequest struct {
	Fulfillment string `json:"fulfillment" validate:"required"`
}

// ListOrders returns all product orders, newest first.
func ListOrders(w http.ResponseWriter, r *http.Request) {
	q := database.DB.Where("kind = ?", models.PurchaseKindOrder)
	if f := r.URL.Query().Get("fulfillment"); f != "" {
		q = q.Where("fulfillment = ?", f)
	}

	var orders []models.Purchase
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Orders",
		Data:    orders,
	})
}

// UpdateOrderFulfillment moves an order's shipping status. Fulfillment is a
// logistics concern and never touches the simulation fields.
func UpdateOrderFulfillment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid order id"})
		return
	}

	var req fulfillmentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	switch req.Fulfillment {
	case models.FulfillmentProcessing, models.FulfillmentShipped,
		models.FulfillmentDelivered, models.FulfillmentCancelled:
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid fulfillment status"})
		return
	}

	var order models.Purchase
	if err := database.DB.
		Where("kind = ?", models.PurchaseKindOrder).
		First(&order, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Order not found"})
		return
	}

	if err := database.DB.Model(&order).Update("fulfillment", req.Fulfillment).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	order.Fulfillment = &req.Fulfillment

	note := models.Notification{
		UserID:  order.UserID,
		Message: fmt.Sprintf("Your order %s is now %s.", order.ItemName, req.Fulfillment),
	}
	database.DB.Create(&note)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Order updated",
		Data:    order,
	})
}
