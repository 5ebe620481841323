package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]*auth.User
	byEmail  map[string]string
	products map[string]*catalog.Product
}

func New() *Store {
	return &Store{
		users:    make(map[string]*auth.User),
		byEmail:  make(map[string]string),
		products: make(map[string]*catalog.Product),
	}
}

func (s *Store) UserByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

func (s *Store) UserByToken(_ context.Context, token string) (*auth.User, error) {
	if token == "" {
		return nil, auth.ErrUserNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Token == token {
			return u.Clone(), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// UserEmail resolves a subscriber's address for the fulfillment engine.
func (s *Store) UserEmail(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return "", catalog.ErrRequesterNotFound
	}
	return u.Email, nil
}

func (s *Store) CreateUser(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := s.byEmail[key]; ok {
		return auth.ErrEmailAlreadyInUse
	}
	u.Version = 1
	s.users[u.ID] = u.Clone()
	s.byEmail[key] = u.ID
	return nil
}

func (s *Store) SaveUser(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[u.ID]
	if !ok {
		return auth.ErrUserNotFound
	}
	if cur.Version != u.Version {
		return auth.ErrVersionConflict
	}
	if !strings.EqualFold(cur.Email, u.Email) {
		key := strings.ToLower(u.Email)
		if _, taken := s.byEmail[key]; taken {
			return auth.ErrEmailAlreadyInUse
		}
		delete(s.byEmail, strings.ToLower(cur.Email))
		s.byEmail[key] = u.ID
	}

	u.Version++
	s.users[u.ID] = u.Clone()
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	delete(s.byEmail, strings.ToLower(u.Email))
	delete(s.users, id)
	return nil
}

func (s *Store) ProductByID(_ context.Context, id string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (s *Store) CreateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Version = 1
	s.products[p.ID] = p.Clone()
	return nil
}

func (s *Store) SaveProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.products[p.ID]
	if !ok {
		return catalog.ErrProductNotFound
	}
	if cur.Version != p.Version {
		return catalog.ErrVersionConflict
	}
	p.Version++
	s.products[p.ID] = p.Clone()
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

// QueryProducts returns matches ordered by creation time.
func (s *Store) QueryProducts(_ context.Context, f catalog.Filter) ([]catalog.Product, error) {
	s.mu.RLock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Match(p) {
			out = append(out, *p.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b catalog.Product) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}
