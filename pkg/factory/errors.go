package factory

import (
	"errors"
	"fmt"
)

// Standard errors for factory operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrUnknownFactory indicates a lookup by an unregistered name or type.
	ErrUnknownFactory = errors.New("unknown factory")

	// ErrDuplicateName indicates a registration under a name already in use.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrResolution indicates a lazy rule read an attribute that was not resolved yet.
	ErrResolution = errors.New("attribute resolution failed")

	// ErrUnknownTrait indicates a requested or always-applied trait is not defined.
	ErrUnknownTrait = errors.New("unknown trait")

	// ErrUnknownSequence indicates direct access to a sequence that was never defined.
	ErrUnknownSequence = errors.New("unknown sequence")

	// ErrPersistence wraps failures reported by the object store during create.
	ErrPersistence = errors.New("persistence failed")

	// ErrNoObjectStore indicates build or create was called on a registry without a store.
	ErrNoObjectStore = errors.New("no object store configured")

	// ErrInvalidDefinition indicates a malformed factory, trait or sequence definition.
	ErrInvalidDefinition = errors.New("invalid definition")

	// ErrUnknownStrategy indicates a strategy value that cannot terminate a run.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// ResolutionError reports a lazy rule that referenced an attribute before it
// was resolved, including a reference to itself.
type ResolutionError struct {
	Factory   string
	Attribute string
	Reference string
	Reason    string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: factory %q attribute %q: %s %q",
		ErrResolution, e.Factory, e.Attribute, e.Reason, e.Reference)
}

// Unwrap lets errors.Is match ErrResolution.
func (e *ResolutionError) Unwrap() error {
	return ErrResolution
}
