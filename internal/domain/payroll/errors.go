package payroll

import "errors"

// Payroll domain errors
var (
	ErrSlipNotFound    = errors.New("salary slip not found")
	ErrSlipExists      = errors.New("salary slip already exists for this period")
	ErrSlipPaid        = errors.New("salary slip has been paid and cannot be modified")
	ErrSlipNotApproved = errors.New("salary slip must be approved before it can be marked paid")
	ErrInvalidPeriod   = errors.New("invalid payroll period")
)
