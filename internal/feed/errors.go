package feed

import (
	"fmt"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
)

const (
	FailureError   = "error"
	FailureTimeout = "timeout"
	FailurePanic   = "panic"
)

// ProviderError records a provider call that was replaced by an empty
// result. It is logged, never returned to ComposeFeed callers.
type ProviderError struct {
	Source domain.Source
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider %s: %v", e.Source, e.Reason, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
