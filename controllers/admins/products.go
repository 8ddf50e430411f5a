package admins

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// CreateProduct creates a catalog product from a multipart form so the image
// can be uploaded in the same request. The image goes to object storage; the
// DB keeps only the key.
func CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}

	product, errMsg := productFromForm(r, nil)
	if errMsg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: errMsg})
		return
	}

	if key, err := uploadProductImage(r); err != nil {
		log.Printf("[products] image upload failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Image upload failed"})
		return
	} else if key != "" {
		product.Image = &key
	}

	if err := database.DB.Create(product).Error; err != nil {
		log.Printf("[products] create failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Product created",
		Data:    product,
	})
}

// UpdateProduct updates a product; fields absent from the form are kept.
func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid product id"})
		return
	}

	var existing models.Product
	if err := database.DB.First(&existing, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Product not found"})
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}

	product, errMsg := productFromForm(r, &existing)
	if errMsg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: errMsg})
		return
	}

	if key, err := uploadProductImage(r); err != nil {
		log.Printf("[products] image upload failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Image upload failed"})
		return
	} else if key != "" {
		if existing.Image != nil && *existing.Image != "" {
			if err := utils.DeleteFromS3(*existing.Image); err != nil {
				log.Printf("[products] delete old image %s failed: %v", *existing.Image, err)
			}
		}
		product.Image = &key
	}

	if err := database.DB.Save(product).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Product updated",
		Data:    product,
	})
}

// DeleteProduct removes a product from the catalog. Purchases keep their
// snapshot, so history survives the delete.
func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid product id"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Product not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	if err := database.DB.Delete(&product).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if product.Image != nil && *product.Image != "" {
		if err := utils.DeleteFromS3(*product.Image); err != nil {
			log.Printf("[products] delete image %s failed: %v", *product.Image, err)
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Product deleted",
	})
}

// ListProducts returns the full catalog including inactive products.
func ListProducts(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	if err := database.DB.Order("created_at DESC").Find(&products).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Products",
		Data:    products,
	})
}

// productFromForm builds a product from form values, starting from base when
// updating. Returns a user-facing message on validation failure.
func productFromForm(r *http.Request, base *models.Product) (*models.Product, string) {
	p := &models.Product{Status: "Active", DailyMinSales: 1, DailyMaxSales: 2}
	if base != nil {
		copied := *base
		p = &copied
	}

	if v := r.FormValue("name"); v != "" {
		p.Name = v
	}
	if p.Name == "" {
		return nil, "Product name is required"
	}
	if v := r.FormValue("description"); v != "" {
		p.Description = v
	}
	if v := r.FormValue("status"); v != "" {
		if v != "Active" && v != "Inactive" {
			return nil, "Status must be Active or Inactive"
		}
		p.Status = v
	}

	numeric := []struct {
		field string
		dst   *float64
	}{
		{"price", &p.Price},
		{"return_rate", &p.ReturnRate},
	}
	for _, n := range numeric {
		if v := r.FormValue(n.field); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return nil, fmt.Sprintf("Invalid %s", n.field)
			}
			*n.dst = f
		}
	}
	if p.Price <= 0 {
		return nil, "Price must be positive"
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{"quantity", &p.Quantity},
		{"daily_min_sales", &p.DailyMinSales},
		{"daily_max_sales", &p.DailyMaxSales},
	}
	for _, n := range ints {
		if v := r.FormValue(n.field); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil || i < 0 {
				return nil, fmt.Sprintf("Invalid %s", n.field)
			}
			*n.dst = i
		}
	}
	if p.DailyMinSales < 1 || p.DailyMaxSales < p.DailyMinSales {
		return nil, "Daily sales range is invalid"
	}

	return p, ""
}

// uploadProductImage uploads the optional "image" form file and returns its
// object key, or "" when no file was sent.
func uploadProductImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	key := fmt.Sprintf("products/%d%s", time.Now().UnixNano(), filepath.Ext(header.Filename))
	if err := utils.UploadToS3(key, file, header.Size); err != nil {
		return "", err
	}
	return key, nil
}
