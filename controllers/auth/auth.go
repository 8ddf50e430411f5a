package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/middleware"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type registerRequest struct {
	Name         string `json:"name" validate:"required,nameok"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phoneok"`
	Password     string `json:"password" validate:"required,pwdmin"`
	ConfirmPass  string `json:"confirm_password" validate:"required,eqfield=Password"`
	ReferralCode string `json:"referral_code"`
	StoreID      *uint  `json:"store_id"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user,omitempty"`
}

// Register creates a user account. A valid referral code links the new account
// to its referrer; the 5% commission is paid later, on the referee's first
// purchase, not at signup.
func Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var existing models.User
	if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{
			Success: false,
			Message: "An account with this email already exists",
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	var referredBy *uint
	if req.ReferralCode != "" {
		var referrer models.User
		if err := database.DB.Where("referral_code = ?", req.ReferralCode).First(&referrer).Error; err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Invalid referral code",
			})
			return
		}
		referredBy = &referrer.ID
	}

	if req.StoreID != nil {
		var store models.Store
		if err := database.DB.First(&store, *req.StoreID).Error; err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Selected store does not exist",
			})
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	user := models.User{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   string(hash),
		Role:       models.RoleUser,
		ReferredBy: referredBy,
		StoreID:    req.StoreID,
	}

	// Retry on the rare referral-code collision; the unique index is the arbiter.
	for attempt := 0; attempt < 3; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
			return
		}
		user.ReferralCode = code
		if err := database.DB.Create(&user).Error; err == nil {
			break
		} else if attempt == 2 {
			log.Printf("[auth] register failed for %s: %v", req.Email, err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
			return
		}
	}

	pair, err := issueTokens(&user)
	if err != nil {
		log.Printf("[auth] token issue failed for user %d: %v", user.ID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Account created",
		Data:    pair,
	})
}

// Login authenticates by email and password with progressive lockout on
// repeated failures.
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Same message as a wrong password so emails cannot be enumerated.
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid email or password",
		})
		return
	}

	if locked, remaining := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: fmt.Sprintf("Account temporarily locked, try again in %d seconds", int(remaining.Seconds())+1),
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid email or password",
		})
		return
	}
	middleware.ResetFailedLogin(user.ID)

	pair, err := issueTokens(&user)
	if err != nil {
		log.Printf("[auth] token issue failed for user %d: %v", user.ID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Logged in",
		Data:    pair,
	})
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued, so a replayed old token fails.
func Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	rt, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid or expired refresh token",
		})
		return
	}

	var user models.User
	if err := database.DB.First(&user, rt.UserID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid refresh token"})
		return
	}

	if err := database.DB.Model(rt).Update("revoked", true).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	pair, err := issueTokens(&user)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Token refreshed",
		Data:    tokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

// Logout revokes the current access token's jti and, when provided, the
// refresh token.
func Logout(w http.ResponseWriter, r *http.Request) {
	if tokenStr, err := utils.ExtractBearerToken(r); err == nil {
		if _, claims, err := utils.ValidateAccessToken(tokenStr); err == nil {
			if jti, ok := claims["jti"].(string); ok && jti != "" {
				ttl := time.Hour
				if exp, ok := claims["exp"].(float64); ok {
					if d := time.Until(time.Unix(int64(exp), 0)); d > 0 {
						ttl = d
					}
				}
				if err := utils.RevokeJTI(jti, ttl); err != nil {
					log.Printf("[auth] revoke jti failed: %v", err)
				}
			}
		}
	}

	// body is optional on logout
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		database.DB.Model(&models.RefreshToken{}).
			Where("id = ?", req.RefreshToken).
			Update("revoked", true)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Logged out",
	})
}

func issueTokens(user *models.User) (*tokenPair, error) {
	access, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	sanitized := *user
	sanitized.Password = ""
	return &tokenPair{AccessToken: access, RefreshToken: refresh, User: &sanitized}, nil
}

const referralCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateReferralCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = referralCharset[int(v)%len(referralCharset)]
	}
	return "RH" + string(out), nil
}
