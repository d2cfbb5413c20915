package handlers

import (
	"net/http"

	"taskhub/internal/auth"
	dom "taskhub/internal/domain"
	"taskhub/internal/dto"
	"taskhub/internal/logging"
	"taskhub/internal/service"

	"github.com/gin-gonic/gin"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles signup, login, logout and me.
type AuthHandler struct {
	sessions *auth.Store
	userSvc  *service.UserService
	cookie   CookieConfig
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions *auth.Store, userSvc *service.UserService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = auth.DefaultCookieName
	}
	return &AuthHandler{sessions: sessions, userSvc: userSvc, cookie: cookie}
}

// Signup godoc
// @Summary      Create an account and start a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SignupRequest  true  "Account"
// @Success      201   {object}  map[string]dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userResponse(user)})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Security     CookieAuth
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(h.cookie.Name)
	if err == nil && sessionID != "" {
		if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
			logging.FromContext(c).WithError(err).Warn("delete session")
		}
	}
	h.setCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary      Current account, if any
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.MeResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	sessionID, err := c.Cookie(h.cookie.Name)
	if err != nil || sessionID == "" {
		c.JSON(http.StatusOK, dto.MeResponse{})
		return
	}
	uid, ok, err := h.sessions.GetUserID(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, dto.MeResponse{})
		return
	}
	user, err := h.userSvc.Get(c.Request.Context(), uid)
	if err != nil {
		// Session outlived its account.
		c.JSON(http.StatusOK, dto.MeResponse{})
		return
	}
	auth.SetUserID(c, user.ID)
	u := userResponse(user)
	c.JSON(http.StatusOK, dto.MeResponse{Authenticated: true, User: &u})
}

func (h *AuthHandler) startSession(c *gin.Context, userID int64) bool {
	sessionID, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return false
	}
	auth.SetUserID(c, userID)
	h.setCookie(c, sessionID, int(h.sessions.TTL().Seconds()))
	return true
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

func userResponse(u dom.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt.UTC()}
}
