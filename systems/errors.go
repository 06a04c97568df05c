package systems

import "errors"

var (
	// ErrConstruction is returned when the input grids are empty or mismatched.
	ErrConstruction = errors.New("vector field construction")

	// ErrEmptyField is returned when a field has no wet cells to spawn from.
	ErrEmptyField = errors.New("vector field has no wet cells")
)
