package family

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidFamily    = errors.New("invalid family")
	ErrInvalidMember    = errors.New("invalid member")
	ErrInvalidCondition = errors.New("invalid condition")
)
