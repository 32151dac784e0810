package generator

import (
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
)

// Recoverable generation failures. Each aborts only the current attempt;
// retrying with a fresh oracle is up to the caller.
var (
	// ErrFeatureDisabled is returned when a production needs like patterns
	// or extension functions and the corresponding setting is off.
	ErrFeatureDisabled = errors.New("feature disabled")
	// ErrTooDeep is returned when a type with no non-recursive production
	// is requested with no recursion budget left.
	ErrTooDeep = errors.New("too deep")
	// ErrUnsupportedPosition is returned when a semantic type cannot be
	// expressed as a schema type where one is required.
	ErrUnsupportedPosition = errors.New("type not supported in this position")
	// ErrNoHierarchy is returned by PopulateHierarchy when the generator
	// was built without a hierarchy.
	ErrNoHierarchy = errors.New("no hierarchy configured")
	// ErrInvalidSettings is returned by Settings.Validate.
	ErrInvalidSettings = errors.New("invalid settings")
)

var (
	errLikeDisabled       = errors.Wrap(ErrFeatureDisabled, "like")
	errExtensionsDisabled = errors.Wrap(ErrFeatureDisabled, "extensions")
)

// Kind classifies err for reporting. Errors that are not generation
// failures classify as "other".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrFeatureDisabled):
		return "feature_disabled"
	case errors.Is(err, ErrTooDeep):
		return "too_deep"
	case errors.Is(err, arbitrary.ErrEmptyChoose):
		return "empty_choose"
	case errors.Is(err, ErrUnsupportedPosition):
		return "unsupported_position"
	case errors.Is(err, arbitrary.ErrNotEnoughData), errors.Is(err, arbitrary.ErrIncorrectFormat):
		return "oracle"
	default:
		return "other"
	}
}
