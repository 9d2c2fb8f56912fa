package middleware

import (
	"net/http"
	"strings"

	"github.com/flexprice/fiscal/internal/auth"
	"github.com/flexprice/fiscal/internal/domain/user"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/gin-gonic/gin"
)

const errCodeUnauthorized = "unauthorized"

// AuthenticateMiddleware verifies the bearer token and loads the caller. The
// authorization context is built from the stored user so role and active
// flag changes apply to tokens already issued.
func AuthenticateMiddleware(verifier *auth.TokenVerifier, users user.Repository, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			unauthorized(c, "Unauthorized")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			unauthorized(c, "Invalid token")
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if ierr.IsNotFound(err) {
				unauthorized(c, "Could not validate credentials")
				return
			}
			logger.Errorw("failed to load user", "user_id", claims.UserID, "error", err)
			c.Error(err)
			c.Abort()
			return
		}

		ctx := types.WithAuthContext(c.Request.Context(), u.AuthContext())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ierr.ErrorResponse{
		Error: ierr.ErrorDetail{
			Code:    errCodeUnauthorized,
			Display: message,
		},
	})
}
