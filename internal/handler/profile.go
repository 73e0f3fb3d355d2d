package handler

import (
	"errors"
	"log"
	"net/http"

	"skillforge/internal/auth"
	"skillforge/internal/middleware"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the current account's profile.
type ProfileHandler struct {
	Svc    *auth.Service
	Secure bool
}

func NewProfileHandler(svc *auth.Service, secure bool) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Secure: secure}
}

// Me returns the current account.
func (h *ProfileHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "unauthorized")
		return
	}
	util.Success(c, util.Response{"user": user})
}

type updateProfileReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateMe changes name and/or email of the current account.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "unauthorized")
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if req.Email != "" {
		if err := util.ValidateEmail(req.Email); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	updated, err := h.Svc.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Email)
	if errors.Is(err, auth.ErrDuplicateEmail) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email already registered")
		return
	}
	if err != nil {
		log.Printf("update profile: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}

	util.Success(c, util.Response{"user": updated})
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword swaps the password hash. On success every session of
// the account is revoked and a fresh one is issued for this client, so
// stolen tokens die with the old password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "unauthorized")
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "current and new password are required")
		return
	}
	if err := util.ValidatePassword(req.NewPassword); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	ok, err := h.Svc.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		log.Printf("change password: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "current password is incorrect")
		return
	}

	if err := h.Svc.RevokeAllSessions(c.Request.Context(), user.ID); err != nil {
		log.Printf("revoke sessions: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}
	token, err := h.Svc.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("create session: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.Svc.SessionTTL().Seconds()), "/", "", h.Secure, true)

	util.Success(c, util.Response{"message": "password changed"})
}
