package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/library-management/internal/model"
)

// BookingRepo provides persistence for queued reservations on books
// that are out of available copies. Fulfillment selection is strictly
// FIFO by booking date with the booking id as tie-break.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, book_id, status, booking_date, expected_available_date, created_at, updated_at`

func scanBooking(scan func(dest ...interface{}) error) (*model.Booking, error) {
    var bk model.Booking
    var status string
    err := scan(&bk.ID, &bk.UserID, &bk.BookID, &status, &bk.BookingDate, &bk.ExpectedAvailableDate,
        &bk.CreatedAt, &bk.UpdatedAt)
    if err != nil {
        return nil, err
    }
    bk.Status = model.BookingStatus(status)
    bk.BookingDate = bk.BookingDate.UTC()
    bk.ExpectedAvailableDate = bk.ExpectedAvailableDate.UTC()
    return &bk, nil
}

// CreateTx inserts a new PENDING booking within the scope of an
// existing transaction and populates the generated ID and timestamps
// on the provided record.
func (r *BookingRepo) CreateTx(ctx context.Context, tx Tx, bk *model.Booking) error {
    res, err := stx(tx).ExecContext(ctx,
        `INSERT INTO bookings (user_id, book_id, status, booking_date, expected_available_date) VALUES (?, ?, ?, ?, ?)`,
        bk.UserID, bk.BookID, string(bk.Status),
        model.DateOnly(bk.BookingDate), model.DateOnly(bk.ExpectedAvailableDate))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    bk.ID = uint64(id)
    row := stx(tx).QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, bk.ID)
    created, err := scanBooking(row.Scan)
    if err != nil {
        return err
    }
    *bk = *created
    return nil
}

// HasPendingTx reports whether the user already has a PENDING booking
// for the book. The check runs inside the caller's transaction so it
// is consistent with the concurrent-create guard on the book row.
func (r *BookingRepo) HasPendingTx(ctx context.Context, tx Tx, userID, bookID uint64) (bool, error) {
    var one int
    err := stx(tx).QueryRowContext(ctx,
        `SELECT 1 FROM bookings WHERE user_id = ? AND book_id = ? AND status = 'PENDING' LIMIT 1`,
        userID, bookID).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// OldestPendingTx returns the earliest PENDING booking for the book,
// FIFO by booking date with ties broken by ascending id, and locks it
// for the duration of the transaction. ErrBookingNotFound is returned
// when no PENDING booking exists.
func (r *BookingRepo) OldestPendingTx(ctx context.Context, tx Tx, bookID uint64) (*model.Booking, error) {
    row := stx(tx).QueryRowContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings
         WHERE book_id = ? AND status = 'PENDING'
         ORDER BY booking_date ASC, id ASC
         LIMIT 1 FOR UPDATE`,
        bookID)
    bk, err := scanBooking(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return bk, err
}

// UpdateStatusTx moves a booking from one status to another. The
// previous status is part of the WHERE clause, so a transition raced
// by another writer affects zero rows and reports ErrBookingNotFound.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx Tx, id uint64, from, to model.BookingStatus) error {
    res, err := stx(tx).ExecContext(ctx,
        `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
        string(to), id, string(from))
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrBookingNotFound
    }
    return nil
}

// GetByID fetches a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
    bk, err := scanBooking(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return bk, err
}

// GetByIDTx fetches a booking by id and locks its row for the
// duration of the transaction.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx Tx, id uint64) (*model.Booking, error) {
    row := stx(tx).QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id)
    bk, err := scanBooking(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return bk, err
}

// BookingFilter narrows List results. Nil fields are ignored.
type BookingFilter struct {
    UserID *uint64
    BookID *uint64
    Status *model.BookingStatus
}

// List returns bookings matching the filter, newest first. When no
// booking matches, an empty slice is returned.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
    query := `SELECT ` + bookingColumns + ` FROM bookings`
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
    bookings := make([]model.Booking, 0)
    for rows.Next() {
        bk, err := scanBooking(rows.Scan)
        if err != nil {
            return nil, err
        }
        bookings = append(bookings, *bk)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return bookings, nil
}

// ExpirePending flips every PENDING booking whose expected available
// date lies strictly before today to EXPIRED and returns the number
// of rows changed. The status guard makes repeated sweeps idempotent.
func (r *BookingRepo) ExpirePending(ctx context.Context, today time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE bookings SET status = 'EXPIRED'
         WHERE status = 'PENDING' AND expected_available_date < ?`,
        model.DateOnly(today))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
