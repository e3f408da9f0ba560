package service

import "errors"

// BatchOutcome reports how a batch operation fared as a whole. Batch
// operations never collapse mixed results into a single pass/fail.
type BatchOutcome string

const (
	BatchAllSuccess BatchOutcome = "all-success"
	BatchAllFailed  BatchOutcome = "all-failed"
	BatchPartial    BatchOutcome = "partial"
)

// outcomeOf derives the aggregate outcome from per-item success flags.
func outcomeOf(succeeded, failed int) BatchOutcome {
	switch {
	case failed == 0:
		return BatchAllSuccess
	case succeeded == 0:
		return BatchAllFailed
	default:
		return BatchPartial
	}
}

// ItemStatus classifies one batch item's result per the error taxonomy.
type ItemStatus string

const (
	ItemCreated        ItemStatus = "created"
	ItemInvalid        ItemStatus = "invalid"        // per-field validation failure
	ItemConflict       ItemStatus = "conflict"       // uniqueness violation, keyed by field
	ItemFailed         ItemStatus = "failed"         // infrastructure failure, rolled back
	ItemAlreadyPresent ItemStatus = "alreadyPresent" // idempotent seeding
)

var (
	ErrPackNotFound = errors.New("service: pack not found")
	ErrRoleCycle    = errors.New("service: role inheritance cycle detected")
	ErrNotFound     = errors.New("service: not found")
)
