package optiq

import (
	"errors"
	"fmt"
)

// ErrMutationCancelled is returned by Update when an undoable mutation is
// cancelled before its undo window elapses. The data provider is never
// called and all optimistic cache writes have been rolled back.
var ErrMutationCancelled = errors.New("optiq: mutation cancelled")

// ResolutionError reports that no configured resource matched a requested
// name or identifier.
type ResolutionError struct {
	Resource string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("optiq: resource %q not found", e.Resource)
}

// DataProviderError is the error shape data providers should return so the
// orchestrator can surface a status code to error notifications. Any other
// error type is forwarded to the caller as-is.
type DataProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *DataProviderError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("data provider: %s (status %d)", e.Message, e.StatusCode)
	case e.Message != "":
		return "data provider: " + e.Message
	case e.Err != nil:
		return "data provider: " + e.Err.Error()
	default:
		return fmt.Sprintf("data provider error (status %d)", e.StatusCode)
	}
}

func (e *DataProviderError) Unwrap() error { return e.Err }

// InvalidateError reports a failed invalidation of a single cache entry.
type InvalidateError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: version bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: version bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
