// Package service implements the borrowing core: the borrow state
// machine, the booking queue, policy settings and the overdue
// sweeper. Every state transition runs as one datastore transaction
// so the inventory-count mutation and the record mutation commit
// together or not at all.
package service

import "errors"

// Business-rule violations reported synchronously to the caller.
// Handlers translate these into HTTP 409 responses, distinguished
// from the repository not-found sentinels which map to 404. Services
// wrap them with entity ids, current status and limit values so the
// failed precondition can be reconstructed from the message.

// ErrBookNotAvailable is returned when a borrow is requested for a
// book with no available copies.
var ErrBookNotAvailable = errors.New("book is not available for borrowing")

// ErrAlreadyBorrowed is returned when the user already holds a
// non-terminal borrow for the book.
var ErrAlreadyBorrowed = errors.New("user already has this book borrowed")

// ErrBorrowLimitReached is returned when the user's count of
// non-terminal borrows has reached the policy limit.
var ErrBorrowLimitReached = errors.New("borrow limit reached")

// ErrHasOverdueBooks is returned when the user holds at least one
// overdue borrow and therefore cannot borrow new books.
var ErrHasOverdueBooks = errors.New("user has overdue books")

// ErrInvalidTransition is returned when an operation is attempted
// from a status that does not permit it.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNotBorrowed is returned when a return is attempted and the
// borrow is not currently ACTIVE or OVERDUE.
var ErrNotBorrowed = errors.New("book is not currently borrowed")

// ErrNotExtendable is returned when an extension is attempted on a
// borrow that is not ACTIVE.
var ErrNotExtendable = errors.New("only active borrows can be extended")

// ErrMaxExtensionsReached is returned when the borrow has already
// used up the policy's extension limit.
var ErrMaxExtensionsReached = errors.New("maximum number of extensions reached")

// ErrAlreadyOverdue is returned when an extension is attempted after
// the due date has passed, even if the sweeper has not flipped the
// status yet.
var ErrAlreadyOverdue = errors.New("overdue borrows cannot be extended")

// ErrBookAvailable is returned when a booking is attempted for a book
// that still has available copies.
var ErrBookAvailable = errors.New("book is currently available, no booking needed")

// ErrAlreadyBooked is returned when the user already has a PENDING
// booking for the book.
var ErrAlreadyBooked = errors.New("user already has a pending booking for this book")
