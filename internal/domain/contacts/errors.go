package contacts

import "errors"

var (
	ErrNotFound        = errors.New("contact not found")
	ErrProtected       = errors.New("contact is protected")
	ErrInvalidPriority = errors.New("priority must be at least 1")
	ErrInvalidContact  = errors.New("contact requires a name and a phone number")
)
