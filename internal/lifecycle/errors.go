package lifecycle

import "fmt"

// DataIntegrityError is an invariant violation inside the engine. It signals an
// upstream contract breach and is never repaired.
type DataIntegrityError struct {
	Model  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation for model %q: %s", e.Model, e.Reason)
}
