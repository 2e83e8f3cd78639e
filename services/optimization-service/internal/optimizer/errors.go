package optimizer

import "errors"

var (
	// ErrDuplicatePlayer is returned when a player id appears more than once in one request.
	ErrDuplicatePlayer = errors.New("optimizer: duplicate player id")
	// ErrNegativeSlotCount is returned when a slot count is below zero.
	ErrNegativeSlotCount = errors.New("optimizer: negative slot count")
	// ErrUnknownSlotType is returned for slot values or names outside the catalog.
	ErrUnknownSlotType = errors.New("optimizer: unknown slot type")
	// ErrInvalidPoints is returned when a point value is NaN, infinite or beyond MaxAbsPoints.
	ErrInvalidPoints = errors.New("optimizer: invalid point value")
	// ErrLineupTooLarge is returned when a request exceeds MaxPlayers or MaxSlotInstances.
	ErrLineupTooLarge = errors.New("optimizer: lineup request too large")

	// ErrNodeOutOfRange is returned when an edge or query references a missing node.
	ErrNodeOutOfRange = errors.New("flow: node index out of range")
	// ErrNegativeCapacity is returned when an edge is added with capacity < 0.
	ErrNegativeCapacity = errors.New("flow: negative edge capacity")
	// ErrSourceIsSink is returned when source and sink are the same node.
	ErrSourceIsSink = errors.New("flow: source and sink must differ")
	// ErrNegativeCycle is returned when the residual graph holds a negative-cost cycle.
	ErrNegativeCycle = errors.New("flow: negative cost cycle in residual graph")
)

// IsInputError reports whether err was caused by a malformed lineup request rather than
// a solver failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrDuplicatePlayer) ||
		errors.Is(err, ErrNegativeSlotCount) ||
		errors.Is(err, ErrUnknownSlotType) ||
		errors.Is(err, ErrInvalidPoints) ||
		errors.Is(err, ErrLineupTooLarge)
}
