package rag

import "fmt"

// ValidationError rejects malformed input before the pipeline starts.
// It is the only error a pipeline caller ever sees; everything after the
// STARTED state is absorbed into the result and its trace.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}
