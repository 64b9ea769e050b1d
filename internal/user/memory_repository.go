package user

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

// NewMemoryRepository builds an in-memory user store for testing and
// development runs without a database.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[int64]User), nextID: 1}
}

func (r *memoryRepository) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailTaken
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return u, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) Update(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	for _, existing := range r.users {
		if existing.ID != u.ID && existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryRepository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(func(User) bool { return true }), nil
}

func (r *memoryRepository) SearchByName(_ context.Context, query string) ([]User, error) {
	needle := strings.ToLower(query)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(func(u User) bool {
		return strings.Contains(strings.ToLower(u.Name), needle)
	}), nil
}

// snapshot copies matching users ordered by id. Callers hold the lock.
func (r *memoryRepository) snapshot(match func(User) bool) []User {
	var users []User
	for _, u := range r.users {
		if match(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}
