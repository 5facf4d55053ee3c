package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/family-chores-api/internal/auth"
	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/dto"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService   *services.AuthService
	familyService *services.FamilyService
	tokens        *auth.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, familyService *services.FamilyService, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		familyService: familyService,
		tokens:        tokens,
	}
}

// Register creates a family with the caller as its admin and signs them in.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		FamilyName string `json:"family_name" binding:"required"`
		Name       string `json:"name" binding:"required"`
		Password   string `json:"password" binding:"required"`
		Email      string `json:"email"`
		Gender     string `json:"gender"`
		Locale     string `json:"locale"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	family, user, err := h.familyService.Register(c.Request.Context(), services.RegisterFamilyInput{
		FamilyName: req.FamilyName,
		PersonName: req.Name,
		Password:   req.Password,
		Email:      req.Email,
		Gender:     req.Gender,
		Locale:     req.Locale,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, ok := h.startSession(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Family: dto.ToFamilyDTO(*family, true),
		User:   dto.ToUserDTO(*user),
		Token:  token,
	})
}

// Login authenticates a person and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, ok := h.startSession(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{User: dto.ToUserDTO(*user), Token: token})
}

// AcceptInvite sets an invited member's first password and signs them in.
func (h *AuthHandler) AcceptInvite(c *gin.Context) {
	type AcceptInviteRequest struct {
		Token       string `json:"token" binding:"required"`
		Name        string `json:"name" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.familyService.AcceptInvite(c.Request.Context(), services.AcceptInviteInput{
		Token:       req.Token,
		Name:        req.Name,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, ok := h.startSession(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{User: dto.ToUserDTO(*user), Token: token})
}

// ForgotPassword starts a password reset. The response never reveals whether
// the address is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.familyService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If an account exists for that email, a reset link has been sent",
	})
}

// ResetPassword sets a new password from a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if _, err := h.familyService.ResetPassword(c.Request.Context(), services.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset",
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated person.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), identity.PersonID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), identity, services.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated",
	})
}

// startSession stores the person in the cookie session and issues a bearer token
func (h *AuthHandler) startSession(c *gin.Context, user *models.User) (string, bool) {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to save session")
		return "", false
	}

	token, err := h.tokens.GenerateToken(user.ID, string(user.Role), user.FamilyID)
	if err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to issue token")
		return "", false
	}
	return token, true
}
