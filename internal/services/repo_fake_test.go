package services

import (
	"context"
	"sync"

	"github.com/campushub/backend/internal/store"
	"github.com/campushub/backend/types"
)

// fakeUserRepo is an in-memory UserRepository mirroring the store's
// contract, including the unique-email rule.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]types.User
	nextID int

	passwordWrites int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.Email = existing.Email
	user.PasswordHash = existing.PasswordHash
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = newHash
	f.users[id] = user
	f.passwordWrites++
	return nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsDeleted = true
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []types.User
	for _, user := range f.users {
		if !user.IsDeleted {
			users = append(users, user)
		}
	}
	return users, nil
}

// recordingNotifier captures sends; when fail is set every send errors.
type recordingNotifier struct {
	recipients []string
	bodies     []string
	fail       error
}

func (n *recordingNotifier) Send(_ context.Context, recipient, _ string, body string) error {
	if n.fail != nil {
		return n.fail
	}
	n.recipients = append(n.recipients, recipient)
	n.bodies = append(n.bodies, body)
	return nil
}
