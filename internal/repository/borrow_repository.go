package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/library-management/internal/model"
)

// BorrowRepo provides persistence for borrow records. Every status
// mutation goes through UpdateTx inside a transaction opened by the
// service layer; the repository itself never decides transitions.
// All date columns are DATE values interpreted at UTC midnight.
type BorrowRepo struct {
    db *sql.DB
}

// NewBorrowRepo returns a new BorrowRepo bound to the given database.
func NewBorrowRepo(db *sql.DB) *BorrowRepo { return &BorrowRepo{db: db} }

const borrowColumns = `id, user_id, book_id, status, borrow_date, due_date, return_date, extension_count, created_at, updated_at`

func scanBorrow(scan func(dest ...interface{}) error) (*model.Borrow, error) {
    var b model.Borrow
    var status string
    var borrowDate, dueDate, returnDate sql.NullTime
    err := scan(&b.ID, &b.UserID, &b.BookID, &status, &borrowDate, &dueDate, &returnDate,
        &b.ExtensionCount, &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return nil, err
    }
    b.Status = model.BorrowStatus(status)
    if borrowDate.Valid {
        d := borrowDate.Time.UTC()
        b.BorrowDate = &d
    }
    if dueDate.Valid {
        d := dueDate.Time.UTC()
        b.DueDate = &d
    }
    if returnDate.Valid {
        d := returnDate.Time.UTC()
        b.ReturnDate = &d
    }
    return &b, nil
}

// CreateTx inserts a new borrow record within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record. The caller must commit or rollback the
// transaction. Callers also hold the book row lock and have checked
// CurrentTx first, which serializes creation per (user, book) pair
// and keeps at most one non-terminal record per pair.
func (r *BorrowRepo) CreateTx(ctx context.Context, tx Tx, b *model.Borrow) error {
    res, err := stx(tx).ExecContext(ctx,
        `INSERT INTO borrows (user_id, book_id, status, extension_count) VALUES (?, ?, ?, ?)`,
        b.UserID, b.BookID, string(b.Status), b.ExtensionCount)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    // Query back the full row to populate timestamps and defaults.
    row := stx(tx).QueryRowContext(ctx, `SELECT `+borrowColumns+` FROM borrows WHERE id = ?`, b.ID)
    created, err := scanBorrow(row.Scan)
    if err != nil {
        return err
    }
    *b = *created
    return nil
}

// CurrentTx returns the single non-terminal borrow record for a
// (user, book) pair and locks it for the duration of the transaction.
// When no such record exists, ErrBorrowNotFound is returned. Creation
// enforces at most one non-terminal record per pair, so the lookup is
// unambiguous.
func (r *BorrowRepo) CurrentTx(ctx context.Context, tx Tx, userID, bookID uint64) (*model.Borrow, error) {
    row := stx(tx).QueryRowContext(ctx,
        `SELECT `+borrowColumns+` FROM borrows
         WHERE user_id = ? AND book_id = ? AND status NOT IN ('RETURNED', 'REJECTED')
         LIMIT 1 FOR UPDATE`,
        userID, bookID)
    b, err := scanBorrow(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBorrowNotFound
    }
    return b, err
}

// UpdateTx writes the mutable borrow fields (status, dates, extension
// count) back to the row holding the record's id.
func (r *BorrowRepo) UpdateTx(ctx context.Context, tx Tx, b *model.Borrow) error {
    _, err := stx(tx).ExecContext(ctx,
        `UPDATE borrows SET status = ?, borrow_date = ?, due_date = ?, return_date = ?, extension_count = ?
         WHERE id = ?`,
        string(b.Status), nullDate(b.BorrowDate), nullDate(b.DueDate), nullDate(b.ReturnDate),
        b.ExtensionCount, b.ID)
    return err
}

// CountNonTerminalByUserTx counts the user's outstanding claims on
// copies, i.e. borrows in any of the four non-terminal statuses.
func (r *BorrowRepo) CountNonTerminalByUserTx(ctx context.Context, tx Tx, userID uint64) (int, error) {
    var n int
    err := stx(tx).QueryRowContext(ctx,
        `SELECT COUNT(*) FROM borrows WHERE user_id = ? AND status NOT IN ('RETURNED', 'REJECTED')`,
        userID).Scan(&n)
    return n, err
}

// CountByUserAndStatusTx counts the user's borrows in a single status.
func (r *BorrowRepo) CountByUserAndStatusTx(ctx context.Context, tx Tx, userID uint64, status model.BorrowStatus) (int, error) {
    var n int
    err := stx(tx).QueryRowContext(ctx,
        `SELECT COUNT(*) FROM borrows WHERE user_id = ? AND status = ?`,
        userID, string(status)).Scan(&n)
    return n, err
}

// GetByID fetches a borrow record by id.
func (r *BorrowRepo) GetByID(ctx context.Context, id uint64) (*model.Borrow, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+borrowColumns+` FROM borrows WHERE id = ?`, id)
    b, err := scanBorrow(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBorrowNotFound
    }
    return b, err
}

// BorrowFilter narrows List results. Nil fields are ignored.
type BorrowFilter struct {
    UserID *uint64
    BookID *uint64
    Status *model.BorrowStatus
}

// List returns borrow records matching the filter, newest first. When
// no record matches, an empty slice is returned.
func (r *BorrowRepo) List(ctx context.Context, f BorrowFilter) ([]model.Borrow, error) {
    query := `SELECT ` + borrowColumns + ` FROM borrows`
    var conds []string
    var args []interface{}
    if f.UserID != nil {
        conds = append(conds, "user_id = ?")
        args = append(args, *f.UserID)
    }
    if f.BookID != nil {
        conds = append(conds, "book_id = ?")
        args = append(args, *f.BookID)
    }
    if f.Status != nil {
        conds = append(conds, "status = ?")
        args = append(args, string(*f.Status))
    }
    if len(conds) > 0 {
        query += " WHERE " + strings.Join(conds, " AND ")
    }
    query += " ORDER BY created_at DESC, id DESC"
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    borrows := make([]model.Borrow, 0)
    for rows.Next() {
        b, err := scanBorrow(rows.Scan)
        if err != nil {
            return nil, err
        }
        borrows = append(borrows, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return borrows, nil
}

// CountsByStatus aggregates record counts per status for reporting.
func (r *BorrowRepo) CountsByStatus(ctx context.Context) (model.BorrowStats, error) {
    var stats model.BorrowStats
    rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM borrows GROUP BY status`)
    if err != nil {
        return stats, err
    }
    defer rows.Close()
    for rows.Next() {
        var status string
        var n int64
        if err := rows.Scan(&status, &n); err != nil {
            return stats, err
        }
        stats.Total += n
        switch model.BorrowStatus(status) {
        case model.BorrowRequested:
            stats.Requested = n
        case model.BorrowActive:
            stats.Active = n
        case model.BorrowOverdue:
            stats.Overdue = n
        case model.BorrowReturned:
            stats.Returned = n
        case model.BorrowRejected:
            stats.Rejected = n
        case model.BorrowAccepted:
            // accepted borrows count toward the total only
        }
    }
    if err := rows.Err(); err != nil {
        return stats, err
    }
    return stats, nil
}

// MarkOverdue flips every ACTIVE borrow whose due date lies strictly
// before today to OVERDUE and returns the number of rows changed. The
// status guard in the WHERE clause makes repeated sweeps idempotent
// and the single statement keeps each record update atomic.
func (r *BorrowRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE borrows SET status = 'OVERDUE'
         WHERE status = 'ACTIVE' AND return_date IS NULL AND due_date < ?`,
        model.DateOnly(today))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// nullDate converts an optional date into a driver-friendly value.
func nullDate(t *time.Time) interface{} {
    if t == nil {
        return nil
    }
    return model.DateOnly(*t)
}
