package v1

import (
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/gin-gonic/gin"
)

// authContext returns the caller set by the auth middleware
func authContext(c *gin.Context) (types.AuthContext, bool) {
	auth, ok := types.GetAuthContext(c.Request.Context())
	if !ok {
		c.Error(ierr.NewError("missing authorization context").
			WithHint("Unauthorized").
			Mark(ierr.ErrPermissionDenied))
		return types.AuthContext{}, false
	}
	return auth, true
}
