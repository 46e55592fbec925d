package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

var decimalRegex = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// IsDecimal accepts signed decimal amounts like "-250" or "28000.50".
func IsDecimal(s string) bool {
	return decimalRegex.MatchString(s)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidMonth reports whether m is a calendar month number.
func IsValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

// IsValidYear bounds payroll periods to a sane range.
func IsValidYear(y int) bool {
	return y >= 2000 && y <= 2100
}

var employeeCodeRegex = regexp.MustCompile(`^[A-Z]{2,4}-\d{3,6}$`)

// IsValidEmployeeCode matches display codes like "RST-0042".
func IsValidEmployeeCode(code string) bool {
	return employeeCodeRegex.MatchString(code)
}
