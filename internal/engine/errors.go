package engine

import "errors"

// Domain errors for workflow operations.
var (
	ErrNotFound        = errors.New("workflow instance not found")
	ErrDuplicateItem   = errors.New("item already has a workflow instance")
	ErrVersionConflict = errors.New("checkpoint version conflict")
)
