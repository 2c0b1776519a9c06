// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/squid-demos/auth"
	"github.com/danielhkuo/squid-demos/cliparse"
	"github.com/danielhkuo/squid-demos/middleware"
	"github.com/danielhkuo/squid-demos/models"
)

const adminCookieTTL = 12 * time.Hour

type AuthHandler struct {
	cfg cliparse.Config
}

func NewAuthHandler(cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password is required")
		return
	}

	if err := auth.ValidateAdminToken(req.Password, h.cfg.AdminToken); err != nil {
		slog.Warn("host login failed", "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AdminCookie,
		Value:    h.cfg.AdminToken,
		Path:     "/",
		MaxAge:   int(adminCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("host logged in", "remote", middleware.GetClientIP(r))
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AdminCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
