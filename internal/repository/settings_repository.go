package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/library-management/internal/model"
)

// SettingsRepo persists the policy-settings singleton. The table holds
// at most one row; Get lazily creates it with the default limits on
// first read so the core never observes missing policy values.
type SettingsRepo struct {
    db *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo bound to the given database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get returns the current policy settings, inserting the defaults
// (14/2/5/7) when no row exists yet.
func (r *SettingsRepo) Get(ctx context.Context) (model.PolicySettings, error) {
    s, err := r.scanFirst(ctx)
    if err == nil {
        return s, nil
    }
    if !errors.Is(err, sql.ErrNoRows) {
        return model.PolicySettings{}, err
    }
    def := model.DefaultPolicySettings()
    _, err = r.db.ExecContext(ctx,
        `INSERT INTO admin_settings (borrow_day_limit, borrow_extend_limit, borrow_book_limit, booking_days_limit)
         VALUES (?, ?, ?, ?)`,
        def.BorrowDayLimit, def.BorrowExtendLimit, def.BorrowBookLimit, def.BookingDaysLimit)
    if err != nil {
        // Another request may have inserted the row first; fall back
        // to reading whatever won.
        if s, readErr := r.scanFirst(ctx); readErr == nil {
            return s, nil
        }
        return model.PolicySettings{}, err
    }
    return r.scanFirst(ctx)
}

// Update overwrites the singleton row with the provided values.
func (r *SettingsRepo) Update(ctx context.Context, s model.PolicySettings) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE admin_settings SET borrow_day_limit = ?, borrow_extend_limit = ?, borrow_book_limit = ?, booking_days_limit = ?
         WHERE id = ?`,
        s.BorrowDayLimit, s.BorrowExtendLimit, s.BorrowBookLimit, s.BookingDaysLimit, s.ID)
    return err
}

func (r *SettingsRepo) scanFirst(ctx context.Context) (model.PolicySettings, error) {
    var s model.PolicySettings
    err := r.db.QueryRowContext(ctx,
        `SELECT id, borrow_day_limit, borrow_extend_limit, borrow_book_limit, booking_days_limit, updated_at
         FROM admin_settings ORDER BY id ASC LIMIT 1`).
        Scan(&s.ID, &s.BorrowDayLimit, &s.BorrowExtendLimit, &s.BorrowBookLimit, &s.BookingDaysLimit, &s.UpdatedAt)
    return s, err
}
