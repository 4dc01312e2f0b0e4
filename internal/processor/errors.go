package processor

import "fmt"

// RunnerCallError is a non-success response from the execution backend.
// It is retryable at the message level.
type RunnerCallError struct {
	Status int
	Body   string
}

func (e RunnerCallError) Error() string {
	return fmt.Sprintf("runner returned status %d: %s", e.Status, e.Body)
}
