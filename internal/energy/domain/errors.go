package energy

import "errors"

var (
	// ErrUnknownFuelKind is returned for fuel kinds outside the known set.
	ErrUnknownFuelKind = errors.New("energy: unknown fuel kind")
	// ErrNotCombustible is returned when normalizing a fuel that is already measured in kWh.
	ErrNotCombustible = errors.New("energy: fuel is not combustible")
	// ErrRecordNotFound is returned when no record exists for a project and fuel.
	ErrRecordNotFound = errors.New("energy: record not found")
	// ErrEmptyProjectID is returned when a record has no project.
	ErrEmptyProjectID = errors.New("energy: empty project id")
)
