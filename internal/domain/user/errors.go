package user

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUserIDRequired  = errors.New("user id is required")
)
