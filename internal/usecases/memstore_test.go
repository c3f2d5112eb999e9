package usecases_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/domain/repositories"
	"greencoin.backend/pkg/utils"
)

type memTxKey struct{}

// memStore is an in-memory store whose transactions run one at a time and
// roll back by restoring a snapshot.
// memStore serializes transactions behind txMu, so concurrent tests here
// cover the usecase pre-checks. beforeUpdate lets a test commit a rival
// transition between a pre-check and the conditional update.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users   map[uuid.UUID]entities.User
	reports map[uuid.UUID]entities.WasteReport
	ledger  []entities.CoinTransaction

	failLedgerWrite error
	beforeUpdate    func(rep *entities.WasteReport, t repositories.StatusTransition)
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[uuid.UUID]entities.User{},
		reports: map[uuid.UUID]entities.WasteReport{},
	}
}

type memSnapshot struct {
	users   map[uuid.UUID]entities.User
	reports map[uuid.UUID]entities.WasteReport
	ledger  []entities.CoinTransaction
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		users:   make(map[uuid.UUID]entities.User, len(s.users)),
		reports: make(map[uuid.UUID]entities.WasteReport, len(s.reports)),
		ledger:  append([]entities.CoinTransaction(nil), s.ledger...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.reports {
		snap.reports[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.reports, s.ledger = snap.users, snap.reports, snap.ledger
}

// UnitOfWork

type memUoW struct{ s *memStore }

func (u memUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()

	snap := u.s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		u.s.restore(snap)
		return err
	}
	return nil
}

func (u memUoW) WithLock(ctx context.Context) context.Context { return ctx }

// Users

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.FirebaseUID == user.FirebaseUID || strings.EqualFold(existing.Email, user.Email) {
			return domainerrors.ErrAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByFirebaseUID(_ context.Context, uid string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.FirebaseUID == uid {
			u := u
			return &u, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memUsers) UpdateProfile(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[user.ID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	u.DisplayName, u.ProfileImageURL = user.DisplayName, user.ProfileImageURL
	r.s.users[user.ID] = u
	return nil
}

func (r memUsers) AddBalance(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return 0, domainerrors.ErrNotFound
	}
	u.CoinBalance += amount
	r.s.users[id] = u
	return u.CoinBalance, nil
}

func (r memUsers) DeductBalance(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return 0, domainerrors.ErrNotFound
	}
	if u.CoinBalance < amount {
		return 0, domainerrors.ErrInsufficientBalance
	}
	u.CoinBalance -= amount
	r.s.users[id] = u
	return u.CoinBalance, nil
}

func (r memUsers) List(_ context.Context, limit, offset int) ([]*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entities.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	if limit <= 0 {
		return all, nil
	}
	if offset >= len(all) {
		return []*entities.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Reports

type memReports struct{ s *memStore }

func (r memReports) withNames(rep entities.WasteReport) *entities.WasteReport {
	if u, ok := r.s.users[rep.ReporterID]; ok {
		rep.ReporterName = u.DisplayName
	}
	if rep.CollectorID != nil {
		if u, ok := r.s.users[*rep.CollectorID]; ok {
			rep.CollectorName = u.DisplayName
		}
	}
	return &rep
}

func (r memReports) Create(_ context.Context, report *entities.WasteReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if report.ID == uuid.Nil {
		report.ID = utils.GenerateUUIDv7()
	}
	r.s.reports[report.ID] = *report
	return nil
}

func (r memReports) GetByID(_ context.Context, id uuid.UUID) (*entities.WasteReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return r.withNames(rep), nil
}

func (r memReports) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.WasteReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.WasteReport, 0, len(ids))
	for _, id := range ids {
		if rep, ok := r.s.reports[id]; ok {
			out = append(out, r.withNames(rep))
		}
	}
	return out, nil
}

func (r memReports) filter(keep func(entities.WasteReport) bool) []*entities.WasteReport {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entities.WasteReport{}
	for _, rep := range r.s.reports {
		if keep(rep) {
			out = append(out, r.withNames(rep))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportedAt.After(out[j].ReportedAt) })
	return out
}

func (r memReports) ListByStatus(_ context.Context, status entities.ReportStatus) ([]*entities.WasteReport, error) {
	return r.filter(func(rep entities.WasteReport) bool { return rep.Status == status }), nil
}

func (r memReports) ListByReporter(_ context.Context, id uuid.UUID) ([]*entities.WasteReport, error) {
	return r.filter(func(rep entities.WasteReport) bool { return rep.ReporterID == id }), nil
}

func (r memReports) ListByCollector(_ context.Context, id uuid.UUID) ([]*entities.WasteReport, error) {
	return r.filter(func(rep entities.WasteReport) bool { return rep.ClaimedBy(id) }), nil
}

func (r memReports) FindOpenWithin(_ context.Context, lat, lon, radiusKm float64) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	type hit struct {
		id   uuid.UUID
		dist float64
	}
	var hits []hit
	for _, rep := range r.s.reports {
		if rep.Status != entities.ReportStatusOpen {
			continue
		}
		d := utils.HaversineKm(lat, lon, rep.Latitude.InexactFloat64(), rep.Longitude.InexactFloat64())
		if d <= radiusKm {
			hits = append(hits, hit{rep.ID, d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.id)
	}
	return ids, nil
}

func (r memReports) UpdateStatusIf(_ context.Context, t repositories.StatusTransition) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[t.ReportID]
	if ok && r.s.beforeUpdate != nil {
		r.s.beforeUpdate(&rep, t)
		r.s.reports[t.ReportID] = rep
	}
	if !ok || rep.Status != t.From {
		return false, nil
	}
	rep.Status = t.To
	rep.UpdatedAt = t.At
	switch t.To {
	case entities.ReportStatusPicking:
		id := *t.CollectorID
		rep.CollectorID = &id
		rep.PickedAt.SetValid(t.At)
	case entities.ReportStatusCollected:
		rep.CollectedAt.SetValid(t.At)
	}
	r.s.reports[t.ReportID] = rep
	return true, nil
}

// Ledger

type memLedger struct{ s *memStore }

func (r memLedger) Create(_ context.Context, tx *entities.CoinTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failLedgerWrite != nil {
		return r.s.failLedgerWrite
	}
	if tx.ID == uuid.Nil {
		tx.ID = utils.GenerateUUIDv7()
	}
	r.s.ledger = append(r.s.ledger, *tx)
	return nil
}

func (r memLedger) ListByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entities.CoinTransaction, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entities.CoinTransaction
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].UserID == userID {
			tx := r.s.ledger[i]
			all = append(all, &tx)
		}
	}
	total := len(all)
	if limit <= 0 {
		return all, total, nil
	}
	if offset >= total {
		return []*entities.CoinTransaction{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r memLedger) SumByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, tx := range r.s.ledger {
		if tx.UserID == userID {
			sum += tx.Amount
		}
	}
	return sum, nil
}

// Geo index

type memGeo struct {
	mu      sync.Mutex
	points  map[uuid.UUID][2]float64
	failAdd error
}

func newMemGeo() *memGeo { return &memGeo{points: map[uuid.UUID][2]float64{}} }

func (g *memGeo) Add(_ context.Context, id uuid.UUID, lat, lon float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAdd != nil {
		return g.failAdd
	}
	g.points[id] = [2]float64{lat, lon}
	return nil
}

func (g *memGeo) Remove(_ context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.points, id)
	return nil
}

func (g *memGeo) FindOpenWithin(_ context.Context, lat, lon, radiusKm float64) ([]uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	type hit struct {
		id   uuid.UUID
		dist float64
	}
	var hits []hit
	for id, p := range g.points {
		if d := utils.HaversineKm(lat, lon, p[0], p[1]); d <= radiusKm {
			hits = append(hits, hit{id, d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.id)
	}
	return ids, nil
}

// Notifier

type published struct {
	topic   string
	payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (n *recordingNotifier) Publish(_ context.Context, topic string, payload interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{topic, payload})
	return n.err
}

func (n *recordingNotifier) topics() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.topic)
	}
	return out
}

func (n *recordingNotifier) on(topic string) []interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []interface{}
	for _, e := range n.events {
		if e.topic == topic {
			out = append(out, e.payload)
		}
	}
	return out
}
