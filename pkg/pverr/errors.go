// Package pverr defines the error taxonomy shared across the simulation
// pipeline. Configuration problems are fatal and stop a run before it
// starts; data-quality problems identify the offending record so the
// caller can see exactly what was clamped or rejected.
package pverr

import "fmt"

// ConfigurationError reports an invalid system or site parameter. The
// pipeline refuses to run when one of these is returned from validation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// DataQualityError reports a weather record that violates physical or
// structural constraints and could not be recovered by clamping.
type DataQualityError struct {
	Stage  string
	Field  string
	Index  int
	Reason string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality: %s: record %d field %s: %s", e.Stage, e.Index, e.Field, e.Reason)
}

// NumericDegeneracyError reports a guarded numeric condition (division by
// zero, undefined air mass) for callers that want the condition surfaced
// instead of the documented sentinel value.
type NumericDegeneracyError struct {
	Stage  string
	Reason string
}

func (e *NumericDegeneracyError) Error() string {
	return fmt.Sprintf("numeric degeneracy: %s: %s", e.Stage, e.Reason)
}
