package service

import (
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/types"
)

func requireActive(auth types.AuthContext) error {
	if !auth.IsActive {
		return ierr.NewError("caller is not active").
			WithHint("Your account is not active").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

func requireRole(auth types.AuthContext, roles ...types.UserRole) error {
	if err := requireActive(auth); err != nil {
		return err
	}
	if !auth.HasRole(roles...) {
		return ierr.NewErrorf("role %s is not allowed", auth.Role).
			WithHint("You are not allowed to perform this operation").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

func requireCompany(auth types.AuthContext, companyID string) error {
	if !auth.CanAccessCompany(companyID) {
		return ierr.NewError("resource belongs to another company").
			WithHint("You are not allowed to access this resource").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}
