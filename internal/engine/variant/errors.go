package variant

import "fmt"

// Load stages reported by LoadError.
const (
	StageFace       = "face"
	StageModel      = "model"
	StageBake       = "bake"
	StageDefinition = "definition"
)

// LoadError reports an asset that could not be resolved while loading or
// baking a table. A table that fails keeps no partial state.
type LoadError struct {
	Table    string
	Stage    string
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("variant %s: %s %s: %v", e.Table, e.Stage, e.Location, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
