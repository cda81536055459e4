package calc

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying generation failures. All abort the current
// invocation; none are retried.
var (
	ErrModelMissing        = errors.New("structural model not found")
	ErrModelAmbiguous      = errors.New("more than one structural model")
	ErrCompositionMismatch = errors.New("endpoint compositions differ")
	ErrUnsupportedMethod   = errors.New("unsupported interpolation method")
	ErrUnsupportedStage    = errors.New("unsupported chain stage")
	ErrConstraintCount     = errors.New("constrained atom count")
)

// Wrap builds an error message that includes pipeline context while tagging
// it with the provided marker for classification by callers.
func Wrap(marker error, state, message string, err error) error {
	detail := buildDetail(state, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(state, message string) string {
	parts := make([]string, 0, 2)
	if state = strings.TrimSpace(state); state != "" {
		parts = append(parts, state)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "generation failure"
	}
	return strings.Join(parts, ": ")
}
