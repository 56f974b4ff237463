package shopping

import "errors"

var (
	// ErrAggregationUnavailable means the Catalog Store could not be reached.
	// No partial list is returned alongside it.
	ErrAggregationUnavailable = errors.New("aggregation unavailable")

	ErrDishNotFound   = errors.New("dish not found")
	ErrInvalidRequest = errors.New("invalid shopping list request")
	ErrForbidden      = errors.New("forbidden")
	ErrNoNotifier     = errors.New("email delivery not configured")
)
