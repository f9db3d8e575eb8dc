package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/johngate/internal/idp"
	"github.com/dropDatabas3/johngate/internal/store"
)

// memRepo es un UserRepository en memoria que cuenta escrituras.
type memRepo struct {
	mu      sync.Mutex
	users   map[string]store.User
	creates int
	updates int
	setPwds int

	// conflictOnce simula que otra réplica creó el usuario entre el Get y
	// el Create.
	conflictOnce *store.User
	failGet      error

	// onGet corre antes de cada GetByUsername, fuera del lock.
	onGet func(ctx context.Context) error
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]store.User{}} }

func (r *memRepo) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	if r.onGet != nil {
		if err := r.onGet(ctx); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	u, ok := r.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (r *memRepo) Create(_ context.Context, u store.User) (*store.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictOnce != nil {
		other := *r.conflictOnce
		r.conflictOnce = nil
		r.users[other.Username] = other
		return nil, store.ErrConflict
	}
	if _, ok := r.users[u.Username]; ok {
		return nil, store.ErrConflict
	}
	r.creates++
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.Username] = u
	return &u, nil
}

func (r *memRepo) UpdateProfile(_ context.Context, username string, upd store.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if upd.Empty() {
		return nil
	}
	u, ok := r.users[username]
	if !ok {
		return store.ErrNotFound
	}
	r.updates++
	upd.Apply(&u)
	r.users[username] = u
	return nil
}

func (r *memRepo) SetPassword(_ context.Context, username, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return store.ErrNotFound
	}
	r.setPwds++
	u.PasswordHash = hash
	r.users[username] = u
	return nil
}

func (r *memRepo) Ping(context.Context) error { return nil }
func (r *memRepo) Close() error               { return nil }

func (r *memRepo) get(username string) store.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[username]
}

// fakeDelegate simula el cliente IdP.
type fakeDelegate struct {
	mu    sync.Mutex
	res   *idp.Result
	err   error
	calls int
	last  [2]string
}

func (f *fakeDelegate) Authenticate(_ context.Context, username, password string) (*idp.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = [2]string{username, password}
	return f.res, f.err
}
