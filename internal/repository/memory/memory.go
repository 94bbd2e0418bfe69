// Package memory is an in-process repository.Store used by tests and by the
// memory storage driver for local runs. Transactions work on a copy of the
// state that replaces the live state on commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/shopspring/decimal"
)

type state struct {
	users         map[string]domain.User
	documents     map[int64]domain.Document
	posLocations  map[int64]domain.POSLocation
	commissions   map[int64]domain.Commission
	notifications map[int64]domain.Notification
	sessions      map[string]domain.Session
	seq           int64
}

func newState() *state {
	return &state{
		users:         make(map[string]domain.User),
		documents:     make(map[int64]domain.Document),
		posLocations:  make(map[int64]domain.POSLocation),
		commissions:   make(map[int64]domain.Commission),
		notifications: make(map[int64]domain.Notification),
		sessions:      make(map[string]domain.Session),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.documents {
		c.documents[k] = v
	}
	for k, v := range s.posLocations {
		c.posLocations[k] = v
	}
	for k, v := range s.commissions {
		c.commissions[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	c.seq = s.seq
	return c
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

type Store struct {
	mu    *sync.Mutex
	root  **state
	inTx  bool
	txSt  *state
	clock func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	st := newState()
	return &Store{mu: &sync.Mutex{}, root: &st, clock: time.Now}
}

// view locks the store outside transactions and returns the state to operate on.
func (s *Store) view() (*state, func()) {
	if s.inTx {
		return s.txSt, func() {}
	}
	s.mu.Lock()
	return *s.root, s.mu.Unlock
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := (*s.root).clone()
	tx := &Store{mu: s.mu, root: s.root, inTx: true, txSt: work, clock: s.clock}
	if err := fn(tx); err != nil {
		return err
	}
	*s.root = work
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Users() repository.UserRepository                 { return (*users)(s) }
func (s *Store) Documents() repository.DocumentRepository         { return (*documents)(s) }
func (s *Store) POSLocations() repository.POSLocationRepository   { return (*posLocations)(s) }
func (s *Store) Commissions() repository.CommissionRepository     { return (*commissions)(s) }
func (s *Store) Notifications() repository.NotificationRepository { return (*notifications)(s) }
func (s *Store) Sessions() repository.SessionRepository           { return (*sessions)(s) }

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, xerrors.ErrNotFound)
}

// ---------------------------------------------------------------- users

type users Store

func (r *users) Create(_ context.Context, u *domain.User) error {
	st, done := (*Store)(r).view()
	defer done()

	if _, ok := st.users[u.ID]; ok {
		return fmt.Errorf("user: %w", xerrors.ErrConflict)
	}
	for _, existing := range st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("user email: %w", xerrors.ErrConflict)
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.clock()
	}
	u.UpdatedAt = u.CreatedAt
	st.users[u.ID] = *u
	return nil
}

func (r *users) GetByID(_ context.Context, id string) (*domain.User, error) {
	st, done := (*Store)(r).view()
	defer done()

	u, ok := st.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (r *users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	st, done := (*Store)(r).view()
	defer done()

	for _, u := range st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (r *users) List(_ context.Context) ([]*domain.User, error) {
	st, done := (*Store)(r).view()
	defer done()

	out := make([]*domain.User, 0, len(st.users))
	for _, u := range st.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *users) SetActive(_ context.Context, id string, active bool) (*domain.User, error) {
	st, done := (*Store)(r).view()
	defer done()

	u, ok := st.users[id]
	if !ok {
		return nil, notFound("user")
	}
	u.IsActive = active
	u.UpdatedAt = r.clock()
	st.users[id] = u
	return &u, nil
}

func (r *users) Stats(_ context.Context) (*domain.UserStats, error) {
	st, done := (*Store)(r).view()
	defer done()

	out := &domain.UserStats{ByRole: make(map[domain.Role]int64)}
	for _, u := range st.users {
		out.Total++
		out.ByRole[u.Role]++
		if u.IsActive {
			out.Active++
		}
	}
	return out, nil
}

// ------------------------------------------------------------ documents

type documents Store

func (r *documents) Create(_ context.Context, d *domain.Document) error {
	st, done := (*Store)(r).view()
	defer done()

	for _, existing := range st.documents {
		if existing.QRValidationCode == d.QRValidationCode {
			return fmt.Errorf("document qr code: %w", xerrors.ErrConflict)
		}
	}
	d.ID = st.nextID()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.clock()
	}
	d.UpdatedAt = d.CreatedAt
	st.documents[d.ID] = *d
	return nil
}

func (r *documents) GetByID(_ context.Context, id int64) (*domain.Document, error) {
	st, done := (*Store)(r).view()
	defer done()

	d, ok := st.documents[id]
	if !ok {
		return nil, notFound("document")
	}
	return &d, nil
}

func (r *documents) GetByQRCode(_ context.Context, code string) (*domain.Document, error) {
	st, done := (*Store)(r).view()
	defer done()

	for _, d := range st.documents {
		if d.QRValidationCode == code {
			return &d, nil
		}
	}
	return nil, notFound("document")
}

func (r *documents) filter(keep func(d *domain.Document) bool, oldestFirst bool) []*domain.Document {
	st, done := (*Store)(r).view()
	defer done()

	out := make([]*domain.Document, 0)
	for _, d := range st.documents {
		d := d
		if keep(&d) {
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if oldestFirst {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *documents) ListAll(_ context.Context) ([]*domain.Document, error) {
	return r.filter(func(*domain.Document) bool { return true }, false), nil
}

func (r *documents) ListBySubmitter(_ context.Context, submitterID string) ([]*domain.Document, error) {
	return r.filter(func(d *domain.Document) bool { return d.SubmitterID == submitterID }, false), nil
}

func (r *documents) ListByCertificador(_ context.Context, certificadorID string) ([]*domain.Document, error) {
	return r.filter(func(d *domain.Document) bool {
		switch d.Status {
		case domain.StatusPendingCertification, domain.StatusCertified, domain.StatusRejected:
			return d.AssignedTo(certificadorID)
		}
		return false
	}, false), nil
}

func (r *documents) ListPendingFor(_ context.Context, certificadorID string) ([]*domain.Document, error) {
	return r.filter(func(d *domain.Document) bool {
		return d.Status == domain.StatusPendingCertification &&
			(d.CertificadorID == nil || *d.CertificadorID == certificadorID)
	}, true), nil
}

func (r *documents) Transition(_ context.Context, id int64, from domain.DocumentStatus, t domain.DocumentTransition) (*domain.Document, error) {
	if !from.CanTransition(t.To) {
		return nil, fmt.Errorf("%w: %s -> %s", xerrors.ErrStateConflict, from, t.To)
	}

	st, done := (*Store)(r).view()
	defer done()

	d, ok := st.documents[id]
	if !ok || d.Status != from {
		return nil, fmt.Errorf("document %d: %w: no longer %s", id, xerrors.ErrStateConflict, from)
	}
	t.Apply(&d, r.clock())
	st.documents[id] = d
	return &d, nil
}

func (r *documents) CountByStatus(_ context.Context) (map[domain.DocumentStatus]int64, error) {
	st, done := (*Store)(r).view()
	defer done()

	out := make(map[domain.DocumentStatus]int64)
	for _, d := range st.documents {
		out[d.Status]++
	}
	return out, nil
}

// -------------------------------------------------------- pos locations

type posLocations Store

func (r *posLocations) Create(_ context.Context, p *domain.POSLocation) error {
	st, done := (*Store)(r).view()
	defer done()

	p.ID = st.nextID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.clock()
	}
	p.UpdatedAt = p.CreatedAt
	st.posLocations[p.ID] = *p
	return nil
}

func (r *posLocations) GetByID(_ context.Context, id int64) (*domain.POSLocation, error) {
	st, done := (*Store)(r).view()
	defer done()

	p, ok := st.posLocations[id]
	if !ok {
		return nil, notFound("pos location")
	}
	return &p, nil
}

func (r *posLocations) ListByOwner(_ context.Context, ownerID string) ([]*domain.POSLocation, error) {
	st, done := (*Store)(r).view()
	defer done()

	out := make([]*domain.POSLocation, 0)
	for _, p := range st.posLocations {
		p := p
		if p.OwnerID == ownerID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *posLocations) SetActive(_ context.Context, id int64, active bool) (*domain.POSLocation, error) {
	st, done := (*Store)(r).view()
	defer done()

	p, ok := st.posLocations[id]
	if !ok {
		return nil, notFound("pos location")
	}
	p.IsActive = active
	p.UpdatedAt = r.clock()
	st.posLocations[id] = p
	return &p, nil
}

// ---------------------------------------------------------- commissions

type commissions Store

func (r *commissions) Create(_ context.Context, c *domain.Commission) error {
	st, done := (*Store)(r).view()
	defer done()

	for _, existing := range st.commissions {
		if existing.DocumentID == c.DocumentID {
			return fmt.Errorf("commission for document %d: %w", c.DocumentID, xerrors.ErrConflict)
		}
	}
	c.ID = st.nextID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.clock()
	}
	st.commissions[c.ID] = *c
	return nil
}

func (r *commissions) GetByDocument(_ context.Context, documentID int64) (*domain.Commission, error) {
	st, done := (*Store)(r).view()
	defer done()

	for _, c := range st.commissions {
		if c.DocumentID == documentID {
			return &c, nil
		}
	}
	return nil, notFound("commission")
}

func (r *commissions) filter(keep func(c *domain.Commission) bool) []*domain.Commission {
	st, done := (*Store)(r).view()
	defer done()

	out := make([]*domain.Commission, 0)
	for _, c := range st.commissions {
		c := c
		if keep(&c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *commissions) ListByParticipant(_ context.Context, userID string) ([]*domain.Commission, error) {
	return r.filter(func(c *domain.Commission) bool {
		return c.VecinoID == userID || c.CertificadorID == userID
	}), nil
}

func (r *commissions) ListUnpaid(_ context.Context) ([]*domain.Commission, error) {
	return r.filter(func(c *domain.Commission) bool { return !c.IsPaid }), nil
}

func (r *commissions) MarkPaid(_ context.Context, id int64, paidAt time.Time) (*domain.Commission, error) {
	st, done := (*Store)(r).view()
	defer done()

	c, ok := st.commissions[id]
	if !ok {
		return nil, notFound("commission")
	}
	if c.IsPaid {
		return nil, xerrors.ErrCommissionPaid
	}
	c.IsPaid = true
	c.PaidAt = &paidAt
	st.commissions[id] = c
	return &c, nil
}

func (r *commissions) Stats(_ context.Context) (*domain.CommissionStats, error) {
	st, done := (*Store)(r).view()
	defer done()

	out := &domain.CommissionStats{
		TotalAmount:  decimal.Zero,
		PaidAmount:   decimal.Zero,
		UnpaidAmount: decimal.Zero,
	}
	for _, c := range st.commissions {
		out.TotalCount++
		out.TotalAmount = out.TotalAmount.Add(c.TotalAmount)
		if c.IsPaid {
			out.PaidCount++
			out.PaidAmount = out.PaidAmount.Add(c.TotalAmount)
		} else {
			out.UnpaidCount++
			out.UnpaidAmount = out.UnpaidAmount.Add(c.TotalAmount)
		}
	}
	return out, nil
}

// -------------------------------------------------------- notifications

type notifications Store

func (r *notifications) Create(_ context.Context, n *domain.Notification) error {
	st, done := (*Store)(r).view()
	defer done()

	n.ID = st.nextID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.clock()
	}
	st.notifications[n.ID] = *n
	return nil
}

func (r *notifications) page(userID string, unreadOnly bool, limit, offset int) []*domain.Notification {
	st, done := (*Store)(r).view()
	defer done()

	out := make([]*domain.Notification, 0)
	for _, n := range st.notifications {
		n := n
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if offset >= len(out) {
		return []*domain.Notification{}
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (r *notifications) ListByUser(_ context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	return r.page(userID, false, limit, offset), nil
}

func (r *notifications) ListUnread(_ context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	return r.page(userID, true, limit, offset), nil
}

func (r *notifications) CountUnread(_ context.Context, userID string) (int, error) {
	st, done := (*Store)(r).view()
	defer done()

	count := 0
	for _, n := range st.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *notifications) MarkAsRead(_ context.Context, id int64, userID string) error {
	st, done := (*Store)(r).view()
	defer done()

	n, ok := st.notifications[id]
	if !ok || n.UserID != userID {
		return notFound("notification")
	}
	n.IsRead = true
	st.notifications[id] = n
	return nil
}

// ------------------------------------------------------------- sessions

type sessions Store

func (r *sessions) Create(_ context.Context, s *domain.Session) error {
	st, done := (*Store)(r).view()
	defer done()

	if _, ok := st.sessions[s.ID]; ok {
		return fmt.Errorf("session: %w", xerrors.ErrConflict)
	}
	st.sessions[s.ID] = *s
	return nil
}

func (r *sessions) Get(_ context.Context, id string) (*domain.Session, error) {
	st, done := (*Store)(r).view()
	defer done()

	s, ok := st.sessions[id]
	if !ok {
		return nil, notFound("session")
	}
	return &s, nil
}

func (r *sessions) Revoke(_ context.Context, id string) error {
	st, done := (*Store)(r).view()
	defer done()

	s, ok := st.sessions[id]
	if !ok || s.RevokedAt != nil {
		return notFound("session")
	}
	now := r.clock()
	s.RevokedAt = &now
	st.sessions[id] = s
	return nil
}

func (r *sessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	st, done := (*Store)(r).view()
	defer done()

	var n int64
	for id, s := range st.sessions {
		if s.ExpiresAt.Before(before) || s.RevokedAt != nil {
			delete(st.sessions, id)
			n++
		}
	}
	return n, nil
}
