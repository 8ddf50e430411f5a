package public

import (
	"log"
	"net/http"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"
)

// productView augments a catalog product with a short-lived presigned image URL.
type productView struct {
	models.Product
	ImageURL string `json:"image_url,omitempty"`
}

// ListPlans returns active subscription plans.
func ListPlans(w http.ResponseWriter, r *http.Request) {
	var plans []models.Plan
	if err := database.DB.Where("status = ?", "Active").Order("price ASC").Find(&plans).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Plans",
		Data:    plans,
	})
}

// ListProducts returns active catalog products with presigned image URLs.
func ListProducts(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	if err := database.DB.Where("status = ?", "Active").Order("created_at DESC").Find(&products).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		v := productView{Product: p}
		if p.Image != nil && *p.Image != "" {
			url, err := utils.GenerateSignedURL(*p.Image, 3600)
			if err != nil {
				log.Printf("[catalog] presign image for product %d failed: %v", p.ID, err)
			} else {
				v.ImageURL = url
			}
		}
		views = append(views, v)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Products",
		Data:    views,
	})
}

// ListStores returns the stores selectable at registration.
func ListStores(w http.ResponseWriter, r *http.Request) {
	var stores []models.Store
	if err := database.DB.Order("name ASC").Find(&stores).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Stores",
		Data:    stores,
	})
}
