package admins

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/middleware"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// isDuplicateEntry reports whether err is a unique-constraint violation, either
// as the raw MySQL error 1062 or as gorm's translated form.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type planRequest struct {
	Name          string  `json:"name" validate:"required"`
	Price         float64 `json:"price" validate:"required"`
	ReturnRate    float64 `json:"return_rate" validate:"required"`
	TotalStock    int     `json:"total_stock" validate:"required"`
	DailyMinSales int     `json:"daily_min_sales"`
	DailyMaxSales int     `json:"daily_max_sales"`
	Status        string  `json:"status"`
}

func (req *planRequest) check() string {
	if req.Price <= 0 || req.ReturnRate <= 0 || req.TotalStock <= 0 {
		return "Price, return rate and total stock must be positive"
	}
	if req.DailyMinSales == 0 {
		req.DailyMinSales = 1
	}
	if req.DailyMaxSales == 0 {
		req.DailyMaxSales = req.DailyMinSales + 1
	}
	if req.DailyMinSales < 1 || req.DailyMaxSales < req.DailyMinSales {
		return "Daily sales range is invalid"
	}
	if req.Status == "" {
		req.Status = "Active"
	}
	if req.Status != "Active" && req.Status != "Inactive" {
		return "Status must be Active or Inactive"
	}
	return ""
}

// CreatePlan adds a subscription plan to the catalog.
func CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if msg := req.check(); msg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return
	}

	plan := models.Plan{
		Name:          req.Name,
		Price:         req.Price,
		ReturnRate:    req.ReturnRate,
		TotalStock:    req.TotalStock,
		DailyMinSales: req.DailyMinSales,
		DailyMaxSales: req.DailyMaxSales,
		Status:        req.Status,
	}
	if err := database.DB.Create(&plan).Error; err != nil {
		if isDuplicateEntry(err) {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "A plan with this name already exists"})
			return
		}
		log.Printf("[plans] create failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Plan created",
		Data:    plan,
	})
}

// UpdatePlan rewrites a plan's catalog row. Running purchases keep their
// snapshot and are unaffected.
func UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid plan id"})
		return
	}

	var plan models.Plan
	if err := database.DB.First(&plan, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Plan not found"})
		return
	}

	var req planRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if msg := req.check(); msg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return
	}

	plan.Name = req.Name
	plan.Price = req.Price
	plan.ReturnRate = req.ReturnRate
	plan.TotalStock = req.TotalStock
	plan.DailyMinSales = req.DailyMinSales
	plan.DailyMaxSales = req.DailyMaxSales
	plan.Status = req.Status

	if err := database.DB.Save(&plan).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Plan updated",
		Data:    plan,
	})
}

// ListPlans returns all plans including inactive ones.
func ListPlans(w http.ResponseWriter, r *http.Request) {
	var plans []models.Plan
	if err := database.DB.Order("price ASC").Find(&plans).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Plans",
		Data:    plans,
	})
}

// DeletePlan removes a plan from the catalog. Purchases carry a snapshot, so
// running cycles are unaffected.
func DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid plan id"})
		return
	}

	res := database.DB.Delete(&models.Plan{}, id)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Plan not found"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Plan deleted",
	})
}
