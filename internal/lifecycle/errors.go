package lifecycle

import (
	"fmt"
	"strings"

	"stackctl/internal/catalog"
)

// PrerequisiteError indicates a required tool or target is unavailable.
// It is fatal: no lifecycle transition is attempted after it.
type PrerequisiteError struct {
	Reason string
	Err    error
}

func (e *PrerequisiteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prerequisite check failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("prerequisite check failed: %s", e.Reason)
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}

// TierAbortError indicates a tier failed verification under strict
// gating. Later tiers were never started; earlier tiers are left
// running.
type TierAbortError struct {
	Tier   catalog.Tier
	Failed []string
}

func (e *TierAbortError) Error() string {
	return fmt.Sprintf("tier %s aborted: services failed readiness: %s",
		e.Tier, strings.Join(e.Failed, ", "))
}
