package service

import (
    "context"
    "fmt"
    "sort"
    "time"

    "github.com/iliyamo/library-management/internal/model"
    "github.com/iliyamo/library-management/internal/queue"
    "github.com/iliyamo/library-management/internal/repository"
)

// memTx satisfies repository.Tx for the in-memory fixture. The
// fixture applies writes immediately, so commit and rollback only
// record that they happened.
type memTx struct {
    committed  bool
    rolledBack bool
}

func (t *memTx) Commit() error   { t.committed = true; return nil }
func (t *memTx) Rollback() error { t.rolledBack = true; return nil }

// memState holds the shared in-memory tables. The per-interface
// views below expose slices of it under the store interfaces, the
// same way the SQL repositories share one database.
type memState struct {
    books    map[uint64]*model.Book
    users    map[uint64]bool
    borrows  map[uint64]*model.Borrow
    bookings map[uint64]*model.Booking

    nextBorrowID  uint64
    nextBookingID uint64
    txs           []*memTx
}

func newMemState() *memState {
    return &memState{
        books:    map[uint64]*model.Book{},
        users:    map[uint64]bool{},
        borrows:  map[uint64]*model.Borrow{},
        bookings: map[uint64]*model.Booking{},
    }
}

func (m *memState) addBook(id uint64, total, available int) {
    m.books[id] = &model.Book{ID: id, Title: fmt.Sprintf("book %d", id), TotalCopies: total, AvailableCopies: available}
}

func (m *memState) addUser(id uint64) { m.users[id] = true }

func (m *memState) addBorrow(b model.Borrow) *model.Borrow {
    m.nextBorrowID++
    b.ID = m.nextBorrowID
    m.borrows[b.ID] = &b
    return &b
}

func (m *memState) addBooking(bk model.Booking) *model.Booking {
    if bk.ID == 0 {
        m.nextBookingID++
        bk.ID = m.nextBookingID
    } else if bk.ID > m.nextBookingID {
        m.nextBookingID = bk.ID
    }
    m.bookings[bk.ID] = &bk
    return &bk
}

func (m *memState) Begin(ctx context.Context) (repository.Tx, error) {
    tx := &memTx{}
    m.txs = append(m.txs, tx)
    return tx, nil
}

// memBooks implements InventoryStore.
type memBooks struct{ *memState }

func (m memBooks) GetByID(ctx context.Context, id uint64) (*model.Book, error) {
    b, ok := m.books[id]
    if !ok {
        return nil, repository.ErrBookNotFound
    }
    cp := *b
    return &cp, nil
}

func (m memBooks) GetForUpdateTx(ctx context.Context, tx repository.Tx, id uint64) (*model.Book, error) {
    return m.GetByID(ctx, id)
}

func (m memBooks) ReserveCopyTx(ctx context.Context, tx repository.Tx, bookID uint64) error {
    b, ok := m.books[bookID]
    if !ok {
        return repository.ErrBookNotFound
    }
    if b.AvailableCopies <= 0 {
        return repository.ErrOutOfStock
    }
    b.AvailableCopies--
    return nil
}

func (m memBooks) ReleaseCopyTx(ctx context.Context, tx repository.Tx, bookID uint64) error {
    b, ok := m.books[bookID]
    if !ok {
        return repository.ErrBookNotFound
    }
    if b.AvailableCopies >= b.TotalCopies {
        return repository.ErrOverCapacity
    }
    b.AvailableCopies++
    return nil
}

// memBorrows implements BorrowStore.
type memBorrows struct{ *memState }

func (m memBorrows) CreateTx(ctx context.Context, tx repository.Tx, b *model.Borrow) error {
    m.nextBorrowID++
    b.ID = m.nextBorrowID
    cp := *b
    m.borrows[b.ID] = &cp
    return nil
}

func (m memBorrows) CurrentTx(ctx context.Context, tx repository.Tx, userID, bookID uint64) (*model.Borrow, error) {
    for _, b := range m.borrows {
        if b.UserID == userID && b.BookID == bookID && !b.Status.Terminal() {
            cp := *b
            return &cp, nil
        }
    }
    return nil, repository.ErrBorrowNotFound
}

func (m memBorrows) UpdateTx(ctx context.Context, tx repository.Tx, b *model.Borrow) error {
    if _, ok := m.borrows[b.ID]; !ok {
        return repository.ErrBorrowNotFound
    }
    cp := *b
    m.borrows[b.ID] = &cp
    return nil
}

func (m memBorrows) CountNonTerminalByUserTx(ctx context.Context, tx repository.Tx, userID uint64) (int, error) {
    n := 0
    for _, b := range m.borrows {
        if b.UserID == userID && !b.Status.Terminal() {
            n++
        }
    }
    return n, nil
}

func (m memBorrows) CountByUserAndStatusTx(ctx context.Context, tx repository.Tx, userID uint64, status model.BorrowStatus) (int, error) {
    n := 0
    for _, b := range m.borrows {
        if b.UserID == userID && b.Status == status {
            n++
        }
    }
    return n, nil
}

func (m memBorrows) GetByID(ctx context.Context, id uint64) (*model.Borrow, error) {
    b, ok := m.borrows[id]
    if !ok {
        return nil, repository.ErrBorrowNotFound
    }
    cp := *b
    return &cp, nil
}

func (m memBorrows) List(ctx context.Context, f repository.BorrowFilter) ([]model.Borrow, error) {
    var out []model.Borrow
    for _, b := range m.borrows {
        if f.UserID != nil && b.UserID != *f.UserID {
            continue
        }
        if f.BookID != nil && b.BookID != *f.BookID {
            continue
        }
        if f.Status != nil && b.Status != *f.Status {
            continue
        }
        out = append(out, *b)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
    return out, nil
}

func (m memBorrows) CountsByStatus(ctx context.Context) (model.BorrowStats, error) {
    var s model.BorrowStats
    for _, b := range m.borrows {
        s.Total++
        switch b.Status {
        case model.BorrowRequested:
            s.Requested++
        case model.BorrowActive:
            s.Active++
        case model.BorrowOverdue:
            s.Overdue++
        case model.BorrowReturned:
            s.Returned++
        case model.BorrowRejected:
            s.Rejected++
        }
    }
    return s, nil
}

func (m memBorrows) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
    var n int64
    for _, b := range m.borrows {
        if b.Status == model.BorrowActive && b.DueDate != nil && b.DueDate.Before(today) {
            b.Status = model.BorrowOverdue
            n++
        }
    }
    return n, nil
}

// memBookings implements BookingStore.
type memBookings struct{ *memState }

func (m memBookings) CreateTx(ctx context.Context, tx repository.Tx, bk *model.Booking) error {
    m.nextBookingID++
    bk.ID = m.nextBookingID
    cp := *bk
    m.bookings[bk.ID] = &cp
    return nil
}

func (m memBookings) HasPendingTx(ctx context.Context, tx repository.Tx, userID, bookID uint64) (bool, error) {
    for _, bk := range m.bookings {
        if bk.UserID == userID && bk.BookID == bookID && bk.Status == model.BookingPending {
            return true, nil
        }
    }
    return false, nil
}

func (m memBookings) OldestPendingTx(ctx context.Context, tx repository.Tx, bookID uint64) (*model.Booking, error) {
    var oldest *model.Booking
    for _, bk := range m.bookings {
        if bk.BookID != bookID || bk.Status != model.BookingPending {
            continue
        }
        if oldest == nil ||
            bk.BookingDate.Before(oldest.BookingDate) ||
            (bk.BookingDate.Equal(oldest.BookingDate) && bk.ID < oldest.ID) {
            oldest = bk
        }
    }
    if oldest == nil {
        return nil, repository.ErrBookingNotFound
    }
    cp := *oldest
    return &cp, nil
}

func (m memBookings) UpdateStatusTx(ctx context.Context, tx repository.Tx, id uint64, from, to model.BookingStatus) error {
    bk, ok := m.bookings[id]
    if !ok || bk.Status != from {
        return repository.ErrBookingNotFound
    }
    bk.Status = to
    return nil
}

func (m memBookings) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    bk, ok := m.bookings[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    cp := *bk
    return &cp, nil
}

func (m memBookings) GetByIDTx(ctx context.Context, tx repository.Tx, id uint64) (*model.Booking, error) {
    return m.GetByID(ctx, id)
}

func (m memBookings) List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error) {
    var out []model.Booking
    for _, bk := range m.bookings {
        if f.UserID != nil && bk.UserID != *f.UserID {
            continue
        }
        if f.BookID != nil && bk.BookID != *f.BookID {
            continue
        }
        if f.Status != nil && bk.Status != *f.Status {
            continue
        }
        out = append(out, *bk)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
    return out, nil
}

func (m memBookings) ExpirePending(ctx context.Context, today time.Time) (int64, error) {
    var n int64
    for _, bk := range m.bookings {
        if bk.Status == model.BookingPending && bk.ExpectedAvailableDate.Before(today) {
            bk.Status = model.BookingExpired
            n++
        }
    }
    return n, nil
}

// memUsers implements UserDirectory.
type memUsers struct{ *memState }

func (m memUsers) Exists(ctx context.Context, id uint64) (bool, error) {
    return m.users[id], nil
}

// fixedPolicy serves a static policy without touching storage.
type fixedPolicy struct {
    p model.PolicySettings
}

func (f fixedPolicy) Policy(ctx context.Context) (model.PolicySettings, error) { return f.p, nil }

// recordingNotifier captures every event for assertions.
type recordingNotifier struct {
    events []queue.NotificationEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, ev queue.NotificationEvent) {
    n.events = append(n.events, ev)
}

func (n *recordingNotifier) ofType(t string) []queue.NotificationEvent {
    var out []queue.NotificationEvent
    for _, ev := range n.events {
        if ev.Type == t {
            out = append(out, ev)
        }
    }
    return out
}

// testClock is the fixed "now" every service test runs at.
var testClock = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

// fixture wires both services over one shared memState with a fixed
// clock and the default policy unless overridden.
type fixture struct {
    state    *memState
    notifier *recordingNotifier
    borrows  *BorrowService
    bookings *BookingService
}

func newFixture(p model.PolicySettings) *fixture {
    st := newMemState()
    n := &recordingNotifier{}
    pol := fixedPolicy{p: p}
    borrowSvc := NewBorrowService(st, memBorrows{st}, memBooks{st}, memBookings{st}, memUsers{st}, pol, n)
    borrowSvc.now = func() time.Time { return testClock }
    bookingSvc := NewBookingService(st, memBookings{st}, memBooks{st}, memUsers{st}, pol, n)
    bookingSvc.now = func() time.Time { return testClock }
    return &fixture{state: st, notifier: n, borrows: borrowSvc, bookings: bookingSvc}
}

func defaultFixture() *fixture { return newFixture(model.DefaultPolicySettings()) }
