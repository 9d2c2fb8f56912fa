package premise

import "errors"

var (
	ErrPremiseNotFound     = errors.New("premise not found")
	ErrRegistrationPending = errors.New("premise registration is pending")
)
