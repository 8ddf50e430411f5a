package users

import (
	"net/http"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"
)

// Info returns the authenticated user's profile, balance and referral stats.
func Info(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.Preload("Store").First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	user.Password = ""

	var referred int64
	database.DB.Model(&models.User{}).Where("referred_by = ?", userID).Count(&referred)

	var earned float64
	database.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, models.TxReferralBonus).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&earned)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Profile",
		Data: map[string]interface{}{
			"user":             user,
			"referred_count":   referred,
			"referral_earning": utils.RoundMoney(earned),
		},
	})
}
