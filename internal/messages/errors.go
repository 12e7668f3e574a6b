package messages

import "errors"

// Domain errors for message operations.
var (
	ErrNotFound  = errors.New("message not found")
	ErrDuplicate = errors.New("message already exists")
)
