package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/family-chores-api/internal/auth"
	"github.com/yukikurage/family-chores-api/internal/constants"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/services"
	"gorm.io/gorm"
)

// RequireAuth authenticates the request by bearer token or session cookie,
// loads the person and stores their identity in the context
func RequireAuth(userRepo repository.UserRepository, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := bearerUserID(c, tokens)
		if !ok {
			session := sessions.Default(c)
			userID, ok = toUint64(session.Get(constants.ContextKeyUserID))
		}

		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				_ = c.Error(err)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		// Store user ID and identity in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyIdentity, services.IdentityOf(user))
		c.Next()
	}
}

// bearerUserID reads "Authorization: Bearer <token>". A header carrying an
// invalid token fails authentication rather than falling back to the cookie.
func bearerUserID(c *gin.Context, tokens *auth.TokenService) (uint64, bool) {
	header := c.GetHeader(constants.BearerTokenHeaderName)
	if header == "" || tokens == nil {
		return 0, false
	}

	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return 0, false
	}

	claims, err := tokens.ValidateToken(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return claims.PersonID, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

// GetIdentity retrieves the caller's identity set by RequireAuth
func GetIdentity(c *gin.Context) (services.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return services.Identity{}, false
	}
	identity, ok := value.(services.Identity)
	return identity, ok
}

func toUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
