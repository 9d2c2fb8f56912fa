package company

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrCompanyDisabled = errors.New("company is not active")
)
