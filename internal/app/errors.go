package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrInvalidCredential = errors.New("invalid password")
	ErrAuthDisabled      = errors.New("admin auth is not configured")
)
