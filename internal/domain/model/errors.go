package model

import "errors"

var (
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrUnknownLanguage = errors.New("unknown language")
)
