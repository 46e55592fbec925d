package attendance

import "errors"

// Attendance domain errors
var (
	// Punch clock errors
	ErrAlreadyPunchedIn  = errors.New("you have already punched in today")
	ErrAlreadyPunchedOut = errors.New("you have already punched out today")
	ErrNoPunchInFound    = errors.New("no punch-in found for today")
	ErrOnLeave           = errors.New("you are on approved leave today")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")

	// ErrDuplicateDay is the repository's mapping of the (employee, date)
	// uniqueness violation; the punch clock recovers from it by re-fetching.
	ErrDuplicateDay = errors.New("attendance record already exists for this day")
)
