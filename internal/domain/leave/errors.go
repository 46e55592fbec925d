package leave

import "errors"

// Leave domain errors
var (
	ErrLeaveNotFound    = errors.New("leave application not found")
	ErrOverlappingLeave = errors.New("an overlapping leave application already exists")
	ErrNotPending       = errors.New("leave application is no longer pending")
	ErrAlreadyProcessed = errors.New("leave application has already been processed")
)
