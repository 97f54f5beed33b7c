package i18n

import "errors"

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrMissingMessage  = errors.New("missing message")
)
