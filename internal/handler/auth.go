package handler

import (
	"errors"
	"log"
	"net/http"

	"skillforge/internal/auth"
	"skillforge/internal/middleware"
	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login, logout and session lookup.
type AuthHandler struct {
	Svc    *auth.Service
	Secure bool // set the Secure cookie attribute (TLS deployments)
}

func NewAuthHandler(svc *auth.Service, secure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Secure: secure}
}

// setSessionCookie issues the session cookie: HttpOnly, SameSite=Lax,
// Path=/, Max-Age = session TTL.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := int(h.Svc.SessionTTL().Seconds())
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.Secure, true)
}

// clearSessionCookie expires the cookie immediately.
func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.Secure, true)
}

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Register creates an account and logs it in. The public endpoint only
// accepts learner/mentor; admins are promoted by an admin later.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name, email and password are required")
		return
	}

	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if req.Role != "" && req.Role != models.RoleLearner && req.Role != models.RoleMentor {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "role must be learner or mentor")
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if errors.Is(err, auth.ErrDuplicateEmail) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email already registered")
		return
	}
	if err != nil {
		log.Printf("register: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "registration failed")
		return
	}

	token, err := h.Svc.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("create session: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "registration failed")
		return
	}
	h.setSessionCookie(c, token)

	util.Success(c, util.Response{"user": user})
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a fresh session. Unknown email
// and wrong password produce the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email and password are required")
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	user, err := h.Svc.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		return
	}
	if err != nil {
		log.Printf("login: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "login failed")
		return
	}

	token, err := h.Svc.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("create session: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "login failed")
		return
	}
	h.setSessionCookie(c, token)

	util.Success(c, util.Response{"user": user})
}

// Logout revokes the current session and clears the cookie. Safe to
// call without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := h.Svc.RevokeSession(c.Request.Context(), token); err != nil {
			log.Printf("revoke session: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "logout failed")
			return
		}
	}
	h.clearSessionCookie(c)
	util.Success(c, util.Response{"message": "logged out"})
}

// Session reports the current authentication state. Never 401s: an
// unresolvable session just reports authenticated=false.
func (h *AuthHandler) Session(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookie)
	user, err := h.Svc.ResolveSession(c.Request.Context(), token)
	if err != nil {
		log.Printf("resolve session: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	if user == nil {
		util.Success(c, util.Response{"authenticated": false, "user": nil})
		return
	}
	util.Success(c, util.Response{"authenticated": true, "user": user})
}
