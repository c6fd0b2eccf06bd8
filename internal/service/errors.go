package service

import "errors"

var (
	ErrUnauthorized    = errors.New("unauthorized: resource does not belong to user")
	ErrRoleMismatch    = errors.New("document role does not match its position in the session")
	ErrUnknownGroup    = errors.New("link references unknown group")
	ErrSessionComplete = errors.New("session is already completed")
)
