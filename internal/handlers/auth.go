package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/middleware"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
	"github.com/IsukaW/Urban-Cleanse-sub001/pkg/utils"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

func Login(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)

		jwtSecret := os.Getenv("APP_JWT_SECRET")
		if jwtSecret == "" {
			log.Println("❌ JWT secret not configured")
			utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}

		user, err := s.GetUserByEmail(req.Email)
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("❌ User not found: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}
		if err != nil {
			utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}
		if !user.Active {
			log.Printf("❌ Inactive account: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    user.Role,
			"iat":     time.Now().Unix(),
			"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
		})
		tokenString, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			log.Println("❌ Failed to create token")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)
		utils.RespondJSON(w, http.StatusOK, LoginResponse{
			OK:    true,
			Token: tokenString,
			User:  &userResponse,
		})
	}
}

type RegisterTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// RegisterFCMToken stores a device push token for the authenticated user.
func RegisterFCMToken(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req RegisterTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.DeviceType == "" {
			req.DeviceType = "android"
		}

		now := time.Now().Unix()
		err := s.SaveFCMToken(&models.FCMToken{
			UserID:     claims.UserID,
			Token:      req.Token,
			DeviceType: req.DeviceType,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save token")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
