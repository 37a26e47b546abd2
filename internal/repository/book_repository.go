package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/library-management/internal/model"
)

// BookRepo is the inventory ledger. It owns every mutation of a
// book's available_copies column; no other code path writes that
// field. Reserve and release run inside the caller's transaction with
// the book row as the per-book serialization point, so concurrent
// requests for the same book observe a consistent count.
type BookRepo struct {
    db *sql.DB
}

// NewBookRepo returns a new BookRepo bound to the given database.
func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{db: db} }

const bookColumns = `id, title, isbn, total_copies, available_copies, created_at, updated_at`

func scanBook(row *sql.Row) (*model.Book, error) {
    var b model.Book
    err := row.Scan(&b.ID, &b.Title, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookNotFound
    }
    if err != nil {
        return nil, err
    }
    return &b, nil
}

// GetByID fetches a book by id without locking.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (*model.Book, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
    return scanBook(row)
}

// GetForUpdateTx fetches a book by id and takes a row-level lock on
// it for the duration of the transaction. Callers that need to make a
// decision based on the available count (create borrow, create
// booking) must read through this method so the count cannot move
// underneath them.
func (r *BookRepo) GetForUpdateTx(ctx context.Context, tx Tx, id uint64) (*model.Book, error) {
    row := stx(tx).QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ? FOR UPDATE`, id)
    return scanBook(row)
}

// ReserveCopyTx decrements available_copies by exactly one. It fails
// with ErrOutOfStock when no copy is free and with ErrBookNotFound
// when the book does not exist; in both cases nothing is mutated.
func (r *BookRepo) ReserveCopyTx(ctx context.Context, tx Tx, bookID uint64) error {
    res, err := stx(tx).ExecContext(ctx,
        `UPDATE books SET available_copies = available_copies - 1 WHERE id = ? AND available_copies > 0`,
        bookID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        if _, err := r.GetForUpdateTx(ctx, tx, bookID); err != nil {
            return err
        }
        return ErrOutOfStock
    }
    return r.checkBoundsTx(ctx, tx, bookID)
}

// ReleaseCopyTx increments available_copies by exactly one. It fails
// with ErrOverCapacity when the book is already at its total copy
// count and with ErrBookNotFound when the book does not exist.
func (r *BookRepo) ReleaseCopyTx(ctx context.Context, tx Tx, bookID uint64) error {
    res, err := stx(tx).ExecContext(ctx,
        `UPDATE books SET available_copies = available_copies + 1 WHERE id = ? AND available_copies < total_copies`,
        bookID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        if _, err := r.GetForUpdateTx(ctx, tx, bookID); err != nil {
            return err
        }
        return ErrOverCapacity
    }
    return r.checkBoundsTx(ctx, tx, bookID)
}

// checkBoundsTx re-reads the counts after a mutation. A count outside
// [0, total_copies] means some code path bypassed the ledger; the
// returned ErrInventoryViolation aborts the enclosing transaction.
func (r *BookRepo) checkBoundsTx(ctx context.Context, tx Tx, bookID uint64) error {
    var available, total int
    err := stx(tx).QueryRowContext(ctx,
        `SELECT available_copies, total_copies FROM books WHERE id = ?`, bookID).
        Scan(&available, &total)
    if err != nil {
        return err
    }
    if available < 0 || available > total {
        return ErrInventoryViolation
    }
    return nil
}
