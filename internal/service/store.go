package service

import (
    "context"
    "time"

    "github.com/iliyamo/library-management/internal/model"
    "github.com/iliyamo/library-management/internal/queue"
    "github.com/iliyamo/library-management/internal/repository"
)

// The interfaces below describe what the core consumes from the
// datastore and the external collaborators. The SQL repositories
// satisfy them directly; tests substitute fakes.

// TxBeginner starts the single logical transaction that wraps every
// state transition.
type TxBeginner interface {
    Begin(ctx context.Context) (repository.Tx, error)
}

// InventoryStore is the inventory ledger plus the catalog lookups the
// core needs. Reserve and release are the only available-copy
// mutators anywhere in the system.
type InventoryStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Book, error)
    GetForUpdateTx(ctx context.Context, tx repository.Tx, id uint64) (*model.Book, error)
    ReserveCopyTx(ctx context.Context, tx repository.Tx, bookID uint64) error
    ReleaseCopyTx(ctx context.Context, tx repository.Tx, bookID uint64) error
}

// BorrowStore persists borrow records.
type BorrowStore interface {
    CreateTx(ctx context.Context, tx repository.Tx, b *model.Borrow) error
    CurrentTx(ctx context.Context, tx repository.Tx, userID, bookID uint64) (*model.Borrow, error)
    UpdateTx(ctx context.Context, tx repository.Tx, b *model.Borrow) error
    CountNonTerminalByUserTx(ctx context.Context, tx repository.Tx, userID uint64) (int, error)
    CountByUserAndStatusTx(ctx context.Context, tx repository.Tx, userID uint64, status model.BorrowStatus) (int, error)
    GetByID(ctx context.Context, id uint64) (*model.Borrow, error)
    List(ctx context.Context, f repository.BorrowFilter) ([]model.Borrow, error)
    CountsByStatus(ctx context.Context) (model.BorrowStats, error)
    MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

// BookingStore persists queued reservations.
type BookingStore interface {
    CreateTx(ctx context.Context, tx repository.Tx, bk *model.Booking) error
    HasPendingTx(ctx context.Context, tx repository.Tx, userID, bookID uint64) (bool, error)
    OldestPendingTx(ctx context.Context, tx repository.Tx, bookID uint64) (*model.Booking, error)
    UpdateStatusTx(ctx context.Context, tx repository.Tx, id uint64, from, to model.BookingStatus) error
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
    GetByIDTx(ctx context.Context, tx repository.Tx, id uint64) (*model.Booking, error)
    List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
    ExpirePending(ctx context.Context, today time.Time) (int64, error)
}

// UserDirectory is the external user collaborator: existence checks
// only.
type UserDirectory interface {
    Exists(ctx context.Context, id uint64) (bool, error)
}

// PolicyProvider supplies the current policy limits. The core reads
// them on every decision; admin writes go through SettingsService.
type PolicyProvider interface {
    Policy(ctx context.Context) (model.PolicySettings, error)
}

// Notifier is the fire-and-forget notification sink. Delivery errors
// are the notifier's problem; the core never consults a return value.
type Notifier interface {
    Notify(ctx context.Context, ev queue.NotificationEvent)
}
