package domain

import (
	"errors"
	"fmt"
)

// Closed failure taxonomy. Collaborator-facing failures are converted into one
// of these kinds at the component boundary; no raw errors cross it.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrExpansionUnavailable  = errors.New("query expansion unavailable")
	ErrRetrievalUnavailable  = errors.New("retrieval unavailable")
	ErrGenerationTimeout     = errors.New("generation timeout")
	ErrGenerationMalformed   = errors.New("generation malformed")
	ErrEvaluationUnavailable = errors.New("evaluation unavailable")
	ErrCancelled             = errors.New("cancelled by caller")
	ErrTemporary             = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
