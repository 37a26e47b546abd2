// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios. Not-found errors map to HTTP 404 while the inventory
// bound errors signal that a reserve or release would push a book's
// available count outside its legal range.
package repository

import "errors"

// ErrUserNotFound is returned when no user exists for the given id.
var ErrUserNotFound = errors.New("user not found")

// ErrBookNotFound is returned when no book exists for the given id.
var ErrBookNotFound = errors.New("book not found")

// ErrBorrowNotFound is returned when no borrow record matches the
// lookup, including when no non-terminal record exists for a
// (user, book) pair.
var ErrBorrowNotFound = errors.New("borrow record not found")

// ErrBookingNotFound is returned when no booking exists for the given
// id or (user, book) pair.
var ErrBookingNotFound = errors.New("booking not found")

// ErrOutOfStock is returned when a copy reservation is attempted while
// the book's available count is zero. The enclosing transaction is
// rolled back and no inventory mutation takes place.
var ErrOutOfStock = errors.New("no available copies")

// ErrOverCapacity is returned when a copy release would raise the
// available count above the book's total copies.
var ErrOverCapacity = errors.New("available copies already at capacity")

// ErrInventoryViolation is returned when the available count is
// observed outside [0, total_copies] after a mutation. It indicates a
// concurrency-control failure elsewhere; callers must abort the
// enclosing transaction rather than attempt repair.
var ErrInventoryViolation = errors.New("inventory count out of bounds")
