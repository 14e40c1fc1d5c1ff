package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noryangjin/auction-server/internal/domain"
	"github.com/noryangjin/auction-server/internal/events"
	"github.com/noryangjin/auction-server/internal/repository"
)

// fakeUserRepo mimics the users table including its unique constraints.
type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]domain.UserSnapshot
	err       error
	createErr error
	creates   int
	onWrite   func() // runs once before the next Update* call
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: map[string]domain.UserSnapshot{}}
	for _, u := range users {
		r.byID[u.ID()] = u.Snapshot()
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	snap := user.Snapshot()
	for _, existing := range r.byID {
		if existing.Email == snap.Email {
			return nil, &repository.DuplicateError{Field: domain.FieldEmail, Constraint: "users_email_key"}
		}
		if existing.PhoneNumber == snap.PhoneNumber {
			return nil, &repository.DuplicateError{Field: domain.FieldPhoneNumber, Constraint: "users_phone_number_key"}
		}
	}
	snap.ID = uuid.NewString()
	r.byID[snap.ID] = snap
	return domain.RestoreUser(snap), nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) (*domain.User, error) {
	return r.update(user, func(row *domain.UserSnapshot, in domain.UserSnapshot) error {
		for id, other := range r.byID {
			if id != in.ID && other.PhoneNumber == in.PhoneNumber {
				return &repository.DuplicateError{Field: domain.FieldPhoneNumber, Constraint: "users_phone_number_key"}
			}
		}
		row.Name, row.PhoneNumber = in.Name, in.PhoneNumber
		return nil
	})
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, user *domain.User) (*domain.User, error) {
	return r.update(user, func(row *domain.UserSnapshot, in domain.UserSnapshot) error {
		row.Password = in.Password
		return nil
	})
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, user *domain.User) (*domain.User, error) {
	return r.update(user, func(row *domain.UserSnapshot, in domain.UserSnapshot) error {
		row.Status = in.Status
		return nil
	})
}

// update applies only the columns set copies, like the targeted UPDATE statements.
// A pending onWrite hook runs first, outside the lock, to interleave another writer.
func (r *fakeUserRepo) update(user *domain.User, set func(row *domain.UserSnapshot, in domain.UserSnapshot) error) (*domain.User, error) {
	r.beforeWrite()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	in := user.Snapshot()
	row, ok := r.byID[in.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := set(&row, in); err != nil {
		return nil, err
	}
	row.UpdatedAt = in.UpdatedAt
	r.byID[in.ID] = row
	return domain.RestoreUser(row), nil
}

func (r *fakeUserRepo) beforeWrite() {
	r.mu.Lock()
	hook := r.onWrite
	r.onWrite = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (r *fakeUserRepo) stored(id string) domain.UserSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	snap, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return domain.RestoreUser(snap), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, snap := range r.byID {
		if snap.Email == email {
			return domain.RestoreUser(snap), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByEmailOrPhone(_ context.Context, email, phone string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, snap := range r.byID {
		if snap.Email == email || snap.PhoneNumber == phone {
			return domain.RestoreUser(snap), nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeProductRepo struct {
	mu      sync.Mutex
	stored  []domain.Product
	err     error
	creates int
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.err != nil {
		return nil, r.err
	}
	stored := *product
	stored.ID = uuid.NewString()
	r.stored = append(r.stored, stored)
	return &stored, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.stored {
		if r.stored[i].ID == id {
			p := r.stored[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProductRepo) ListBySeller(_ context.Context, sellerID string, limit, offset int) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Product
	for _, p := range r.stored {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeCache keeps a generation per identity the way the Redis cache does.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]domain.UserSnapshot
	gens    map[string]int64
	getErr  error
	gets    int
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]domain.UserSnapshot{}, gens: map[string]int64{}}
}

func (c *fakeCache) Get(_ context.Context, identity string) (domain.UserSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return domain.UserSnapshot{}, false, c.getErr
	}
	snap, ok := c.entries[identity]
	return snap, ok, nil
}

func (c *fakeCache) Generation(_ context.Context, identity string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[identity], nil
}

func (c *fakeCache) SetIfGeneration(_ context.Context, identity string, snap domain.UserSnapshot, generation int64, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[identity] != generation {
		return false, nil
	}
	c.entries[identity] = snap
	return true, nil
}

func (c *fakeCache) Delete(_ context.Context, identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[identity]++
	delete(c.entries, identity)
	c.deletes = append(c.deletes, identity)
	return nil
}

func (c *fakeCache) cached(identity string) (domain.UserSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.entries[identity]
	return snap, ok
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func storedAccount(id, email, phone string, role domain.UserRole, status domain.UserStatus) *domain.User {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.RestoreUser(domain.UserSnapshot{
		ID:          id,
		Email:       email,
		Password:    "$2a$04$hash",
		Name:        "사용자",
		PhoneNumber: phone,
		Role:        role,
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   created,
	})
}
