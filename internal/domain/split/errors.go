package split

import "errors"

var (
	ErrSplitNotFound = errors.New("split not found")
	ErrInvalidSplit  = errors.New("invalid split")
)
