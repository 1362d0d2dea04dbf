package auth

import "errors"

var (
	ErrEmailAlreadyExists    = errors.New("a user with this email already exists")
	ErrUsernameAlreadyExists = errors.New("a user with this username already exists")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrWrongPassword         = errors.New("current password is incorrect")
)
