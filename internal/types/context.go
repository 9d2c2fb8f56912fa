package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxCompanyID     ContextKey = "ctx_company_id"
	CtxAuth          ContextKey = "ctx_auth"

	// Header names
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"

	// DefaultUserID is used for work not triggered by a user (startup, cron)
	DefaultUserID = "00000000-0000-0000-0000-000000000000"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetCompanyID(ctx context.Context) string {
	if companyID, ok := ctx.Value(CtxCompanyID).(string); ok {
		return companyID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// WithAuthContext stores the caller's authorization context along with the
// user and company ids used for logging
func WithAuthContext(ctx context.Context, auth AuthContext) context.Context {
	ctx = context.WithValue(ctx, CtxAuth, auth)
	ctx = context.WithValue(ctx, CtxUserID, auth.UserID)
	return context.WithValue(ctx, CtxCompanyID, auth.CompanyID)
}

// GetAuthContext returns the authorization context set by the auth middleware
func GetAuthContext(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(CtxAuth).(AuthContext)
	return auth, ok
}
