package repository

import "errors"

var (
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadySettled   = errors.New("listing already settled or no longer active")
	ErrCreateFailed     = errors.New("create failed")
	ErrQueryFailed      = errors.New("database query failed")
	ErrConnectionFailed = errors.New("database connection failed")
)
