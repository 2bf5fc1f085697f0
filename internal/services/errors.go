package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidImage       = errors.New("invalid image")
	ErrUnknownGroup       = errors.New("unknown group")
	ErrEmptyText          = errors.New("text is required")
)
