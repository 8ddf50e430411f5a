package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"gorm.io/gorm"
)

// AdminAuthMiddleware verifies that the request carries a valid token whose
// role claim is admin and that the account still exists with that role.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := utils.ExtractBearerToken(r)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: No token provided",
			})
			return
		}

		_, claims, err := utils.ValidateAccessToken(tokenString)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: Invalid token",
			})
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != models.RoleAdmin {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden: Admin access required",
			})
			return
		}

		var adminID uint
		if rawID, ok := claims["id"]; ok {
			switch v := rawID.(type) {
			case float64:
				adminID = uint(v)
			case int:
				adminID = uint(v)
			case string:
				var n uint
				_, _ = fmt.Sscanf(v, "%d", &n)
				adminID = n
			}
		}

		// The role claim can outlive a demotion, so re-check the row.
		var admin models.User
		if err := database.DB.Select("id", "role").First(&admin, adminID).Error; err != nil {
			status := http.StatusInternalServerError
			msg := "Internal server error"
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusUnauthorized
				msg = "Unauthorized: Admin not found"
			}
			utils.WriteJSON(w, status, utils.APIResponse{Success: false, Message: msg})
			return
		}
		if admin.Role != models.RoleAdmin {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden",
			})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, adminID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
