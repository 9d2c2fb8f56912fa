package middleware

import (
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/gin-gonic/gin"
)

// RequireRole rejects callers that are inactive or hold none of roles.
// The services check roles again, this keeps admin routes closed early.
func RequireRole(roles ...types.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := types.GetAuthContext(c.Request.Context())
		if !ok {
			c.Error(ierr.NewError("missing authorization context").
				WithHint("Unauthorized").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}
		if !auth.IsActive {
			c.Error(ierr.NewError("caller is not active").
				WithHint("Account has been disabled").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}
		if !auth.HasRole(roles...) {
			c.Error(ierr.NewErrorf("role %s is not allowed", auth.Role).
				WithHint("Insufficient permission").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}
		c.Next()
	}
}
