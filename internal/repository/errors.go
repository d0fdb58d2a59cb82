// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation engine and handlers to distinguish between failure
// scenarios without string matching.
package repository

import "errors"

// ErrInsufficientStock is returned by InventoryRepo.ReserveTx when the
// ledger line does not hold enough quantity for the requested amount.
// The check and the decrement are a single statement, so this error
// guarantees that no partial decrement happened.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrNotFound is returned when a referenced row (station, inventory
// line, user, event) does not exist.
var ErrNotFound = errors.New("not found")
