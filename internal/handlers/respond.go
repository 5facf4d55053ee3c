package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/middleware"
	"github.com/yukikurage/family-chores-api/internal/services"
	"github.com/yukikurage/family-chores-api/internal/utils"
)

// respondError maps service errors onto the API error envelope. Anything
// unexpected is attached to the context for the request logger and answered
// with a generic 500.
func respondError(c *gin.Context, err error) {
	var validationErr utils.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.BadRequestWithDetails(c, validationErr.Message, gin.H{"field": validationErr.Field})
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrWrongPassword):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNoFamily),
		errors.Is(err, services.ErrCannotRemoveSelf),
		errors.Is(err, services.ErrCannotRemoveAdmin),
		errors.Is(err, services.ErrCannotChangeAdminRole):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrGiftNotFound),
		errors.Is(err, services.ErrCompletionNotFound),
		errors.Is(err, services.ErrRedemptionNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrFamilyNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrInvalidInviteCode),
		errors.Is(err, services.ErrInvalidOrExpiredToken):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTokenExpired):
		apierrors.Gone(c, err.Error())
	case errors.Is(err, services.ErrNameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAccountConflict),
		errors.Is(err, services.ErrAlreadyInFamily):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrAlreadyCompletedToday):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeAlreadyCompletedToday, err.Error())
	case errors.Is(err, services.ErrInsufficientPoints):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInsufficientPoints, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidTransition, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// requireIdentity returns the caller's identity or answers 401
func requireIdentity(c *gin.Context) (services.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return services.Identity{}, false
	}
	return identity, true
}

// parseIDParam parses a numeric path parameter or answers 400
func parseIDParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}
