package service

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateIdentity  = errors.New("identity already taken")
	ErrInvalidCredentials = errors.New("invalid identity or password")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
)
