// Package repotest provides an in-memory repository.Store for handler and
// service tests.
package repotest

import (
	"context"
	"sort"
	"sync"

	"zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/domain/parcels"
	"zapshift-backend/internal/domain/riders"
	"zapshift-backend/internal/domain/users"
	"zapshift-backend/internal/repository"

	"github.com/google/uuid"
)

type state struct {
	users    map[string]users.User
	riders   map[string]riders.Rider
	parcels  map[string]parcels.Parcel
	payments map[string]billing.Payment
}

// journal collects undo steps for writes made inside InTx.
type journal struct {
	undo []func(d *state)
}

func (j *journal) record(fn func(d *state)) {
	if j != nil {
		j.undo = append(j.undo, fn)
	}
}

// Store keeps every collection in maps. InTx calls are serialized and undo
// their own writes when fn fails; writes made outside the transaction stay,
// as they would with a real database.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data state

	// BeforePaymentCreate, when set, runs before each payment insert. Tests use
	// it to inject failures or to race a competing writer.
	BeforePaymentCreate func(ctx context.Context, p *billing.Payment) error
}

func New() *Store {
	return &Store{data: state{
		users:    map[string]users.User{},
		riders:   map[string]riders.Rider{},
		parcels:  map[string]parcels.Parcel{},
		payments: map[string]billing.Payment{},
	}}
}

func (s *Store) Users() repository.UserRepository       { return userRepo{s, nil} }
func (s *Store) Riders() repository.RiderRepository     { return riderRepo{s, nil} }
func (s *Store) Parcels() repository.ParcelRepository   { return parcelRepo{s, nil} }
func (s *Store) Payments() repository.PaymentRepository { return paymentRepo{s, nil} }

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txStore{Store: s, j: &journal{}}
	if err := fn(ctx, tx); err != nil {
		s.mu.Lock()
		for i := len(tx.j.undo) - 1; i >= 0; i-- {
			tx.j.undo[i](&s.data)
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Close(context.Context) error { return nil }

type txStore struct {
	*Store
	j *journal
}

func (t *txStore) Users() repository.UserRepository       { return userRepo{t.Store, t.j} }
func (t *txStore) Riders() repository.RiderRepository     { return riderRepo{t.Store, t.j} }
func (t *txStore) Parcels() repository.ParcelRepository   { return parcelRepo{t.Store, t.j} }
func (t *txStore) Payments() repository.PaymentRepository { return paymentRepo{t.Store, t.j} }

// InTx inside a transaction joins it.
func (t *txStore) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return fn(ctx, t)
}

// PaymentCount returns the number of ledger entries.
func (s *Store) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.payments)
}

type userRepo struct {
	s *Store
	j *journal
}

func (r userRepo) Create(_ context.Context, u *users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	id := u.ID
	r.s.data.users[id] = *u
	r.j.record(func(d *state) { delete(d.users, id) })
	return nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) List(context.Context) ([]users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []users.User{}
	for _, u := range r.s.data.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r userRepo) UpdateRole(_ context.Context, email, role string) (repository.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.data.users {
		if u.Email != email {
			continue
		}
		res := repository.UpdateResult{MatchedCount: 1}
		if u.Role != role {
			prev := r.s.data.users[id]
			u.Role = role
			r.s.data.users[id] = u
			r.j.record(func(d *state) { d.users[id] = prev })
			res.ModifiedCount = 1
		}
		return res, nil
	}
	return repository.UpdateResult{}, nil
}

func (r userRepo) LinkGoogle(_ context.Context, email, sub string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.data.users {
		if u.Email == email {
			prev := u
			u.GoogleSub = &sub
			u.AuthProvider = "google"
			r.s.data.users[id] = u
			r.j.record(func(d *state) { d.users[id] = prev })
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r userRepo) SetPassword(_ context.Context, email, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.data.users {
		if u.Email == email {
			prev := u
			u.Password = &hash
			r.s.data.users[id] = u
			r.j.record(func(d *state) { d.users[id] = prev })
			return nil
		}
	}
	return repository.ErrNotFound
}

type riderRepo struct {
	s *Store
	j *journal
}

func (r riderRepo) Create(_ context.Context, rd *riders.Rider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rd.ID == "" {
		rd.ID = uuid.NewString()
	}
	id := rd.ID
	r.s.data.riders[id] = *rd
	r.j.record(func(d *state) { delete(d.riders, id) })
	return nil
}

func (r riderRepo) FindByID(_ context.Context, id string) (*riders.Rider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.data.riders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rd, nil
}

func (r riderRepo) List(_ context.Context, status string) ([]riders.Rider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []riders.Rider{}
	for _, rd := range r.s.data.riders {
		if status == "" || rd.Status == status {
			out = append(out, rd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r riderRepo) UpdateStatus(_ context.Context, id, status string) (repository.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.data.riders[id]
	if !ok {
		return repository.UpdateResult{}, nil
	}
	res := repository.UpdateResult{MatchedCount: 1}
	if rd.Status != status {
		prev := rd
		rd.Status = status
		r.s.data.riders[id] = rd
		r.j.record(func(d *state) { d.riders[id] = prev })
		res.ModifiedCount = 1
	}
	return res, nil
}

type parcelRepo struct {
	s *Store
	j *journal
}

func (r parcelRepo) Create(_ context.Context, p *parcels.Parcel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	id := p.ID
	r.s.data.parcels[id] = *p
	r.j.record(func(d *state) { delete(d.parcels, id) })
	return nil
}

func (r parcelRepo) FindByID(_ context.Context, id string) (*parcels.Parcel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.parcels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r parcelRepo) List(_ context.Context, senderEmail string) ([]parcels.Parcel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []parcels.Parcel{}
	for _, p := range r.s.data.parcels {
		if senderEmail == "" || p.SenderEmail == senderEmail {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r parcelRepo) Delete(_ context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.data.parcels[id]
	if !ok {
		return 0, nil
	}
	delete(r.s.data.parcels, id)
	r.j.record(func(d *state) { d.parcels[id] = prev })
	return 1, nil
}

func (r parcelRepo) MarkPaid(_ context.Context, id, trackingID string, amount float64) (repository.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.parcels[id]
	if !ok || p.IsPaid() {
		return repository.UpdateResult{}, nil
	}
	prev := p
	p.PaymentStatus = parcels.PaymentStatusPaid
	p.TrackingID = &trackingID
	p.Amount = &amount
	r.s.data.parcels[id] = p
	r.j.record(func(d *state) { d.parcels[id] = prev })
	return repository.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

type paymentRepo struct {
	s *Store
	j *journal
}

func (r paymentRepo) Create(ctx context.Context, p *billing.Payment) error {
	if hook := r.s.BeforePaymentCreate; hook != nil {
		if err := hook(ctx, p); err != nil {
			return err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.payments {
		if existing.TransactionID == p.TransactionID || existing.TrackingID == p.TrackingID {
			return repository.ErrDuplicate
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	id := p.ID
	r.s.data.payments[id] = *p
	r.j.record(func(d *state) { delete(d.payments, id) })
	return nil
}

func (r paymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*billing.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.payments {
		if p.TransactionID == transactionID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r paymentRepo) TrackingIDExists(_ context.Context, trackingID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.payments {
		if p.TrackingID == trackingID {
			return true, nil
		}
	}
	return false, nil
}

func (r paymentRepo) List(_ context.Context, customerEmail string) ([]billing.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []billing.Payment{}
	for _, p := range r.s.data.payments {
		if customerEmail == "" || p.CustomerEmail == customerEmail {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}
