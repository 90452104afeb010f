package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/companion/internal/domain"
	"github.com/Vovarama1992/companion/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
)

type AuthHandler struct {
	auth ports.AuthService
	log  *logger.ZapLogger
}

func NewAuthHandler(auth ports.AuthService, log *logger.ZapLogger) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		log:  log,
	}
}

// POST /api/login {"password": "..."}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Password)
	if errors.Is(err, domain.ErrInvalidPassword) {
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "login rejected",
		})
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "login failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "login success",
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"token": token,
	})
}
