package catalog

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidIngredient = errors.New("invalid ingredient")
	ErrInvalidDish       = errors.New("invalid dish")
	ErrUnknownIngredient = errors.New("dish references unknown ingredient")
	ErrInvalidPhoto      = errors.New("invalid photo")
)
