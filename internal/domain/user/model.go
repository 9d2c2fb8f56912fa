package user

import (
	"time"

	"github.com/flexprice/fiscal/internal/types"
)

type User struct {
	ID        string         `db:"id" json:"id"`
	Username  string         `db:"username" json:"username"`
	Email     string         `db:"email" json:"email"`
	Role      types.UserRole `db:"role" json:"role"`
	CompanyID string         `db:"company_id" json:"company_id"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// AuthContext builds the authorization context passed into core operations
func (u *User) AuthContext() types.AuthContext {
	return types.AuthContext{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		Role:      u.Role,
		IsActive:  u.Active,
	}
}
