package dsl

import "fmt"

// Diagnostics accumulates everything Parse found wrong or adjusted while
// reading a source text. Parse never returns a Go error for malformed DSL
// input; callers inspect IsValid and the Errors/Warnings slices instead.
type Diagnostics struct {
	IsValid            bool
	Errors             []string
	Warnings           []string
	ValidInstruments   []string
	InvalidInstruments []string
}

func (d *Diagnostics) addError(format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
	d.IsValid = false
}

func (d *Diagnostics) addWarning(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

func newDiagnostics() Diagnostics {
	return Diagnostics{IsValid: true}
}
