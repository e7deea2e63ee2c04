package service

import "errors"

var (
	ErrNotFound             = errors.New("error not found")
	ErrValidation           = errors.New("error validation")
	ErrInsufficientHoldings = errors.New("error insufficient holdings")
	ErrAlreadyExists        = errors.New("error already exists")
	ErrInvalidCredentials   = errors.New("error invalid credentials")
)
