package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/restock/pkg/pg"
	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

const userColumns = "id, email, password_hash, roles, active, confirmed, token, created_at, updated_at, version"

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		u     auth.User
		token *string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Roles, &u.Active, &u.Confirmed,
		&token, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres: scan user: %w", err)
	}
	if token != nil {
		u.Token = *token
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func (s *Store) UserByToken(ctx context.Context, token string) (*auth.User, error) {
	if token == "" {
		return nil, auth.ErrUserNotFound
	}
	return scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE token = $1", token))
}

func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	if err := s.pool.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&email); err != nil {
		if pg.IsNotFoundError(err) {
			return "", catalog.ErrRequesterNotFound
		}
		return "", fmt.Errorf("postgres: user email: %w", err)
	}
	return email, nil
}

func nullableToken(t string) *string {
	if t == "" {
		return nil
	}
	return &t
}

func roles(r []string) []string {
	if r == nil {
		return []string{}
	}
	return r
}

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)`,
		u.ID, u.Email, u.PasswordHash, roles(u.Roles), u.Active, u.Confirmed,
		nullableToken(u.Token), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("postgres: insert user: %w", err)
	}
	u.Version = 1
	return nil
}

func (s *Store) SaveUser(ctx context.Context, u *auth.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $3, password_hash = $4, roles = $5, active = $6, confirmed = $7,
			token = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $2`,
		u.ID, u.Version, u.Email, u.PasswordHash, roles(u.Roles), u.Active, u.Confirmed,
		nullableToken(u.Token), u.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("postgres: update user: %w", err)
	}
	if err := s.versionCheck(ctx, "users", u.ID, tag, auth.ErrUserNotFound, auth.ErrVersionConflict); err != nil {
		return err
	}
	u.Version++
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// versionCheck tells a missing row from a stale version when an update
// touched nothing.
func (s *Store) versionCheck(ctx context.Context, table, id string, tag pgconn.CommandTag, notFound, conflict error) error {
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("postgres: check %s: %w", table, err)
	}
	if !exists {
		return notFound
	}
	return conflict
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var (
		p           catalog.Product
		attrs, subs []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &attrs, &p.Price, &p.Stock, &subs,
		&p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("postgres: scan product: %w", err)
	}
	if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
		return nil, fmt.Errorf("postgres: decode attributes: %w", err)
	}
	if err := json.Unmarshal(subs, &p.Subscribers); err != nil {
		return nil, fmt.Errorf("postgres: decode subscribers: %w", err)
	}
	if p.Attributes == nil {
		p.Attributes = map[string]string{}
	}
	if p.Subscribers == nil {
		p.Subscribers = []catalog.Subscriber{}
	}
	return &p, nil
}

func encodeProduct(p *catalog.Product) (attrs, subs []byte, err error) {
	a := p.Attributes
	if a == nil {
		a = map[string]string{}
	}
	s := p.Subscribers
	if s == nil {
		s = []catalog.Subscriber{}
	}
	if attrs, err = json.Marshal(a); err != nil {
		return nil, nil, fmt.Errorf("postgres: encode attributes: %w", err)
	}
	if subs, err = json.Marshal(s); err != nil {
		return nil, nil, fmt.Errorf("postgres: encode subscribers: %w", err)
	}
	return attrs, subs, nil
}

func (s *Store) ProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	return scanProduct(s.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
}

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	attrs, subs, err := encodeProduct(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7::jsonb, $8, $9, 1)`,
		p.ID, p.Name, p.Description, string(attrs), p.Price, p.Stock, string(subs), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert product: %w", err)
	}
	p.Version = 1
	return nil
}

func (s *Store) SaveProduct(ctx context.Context, p *catalog.Product) error {
	attrs, subs, err := encodeProduct(p)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET name = $3, description = $4, attributes = $5::jsonb, price = $6, stock = $7,
			subscribers = $8::jsonb, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $2`,
		p.ID, p.Version, p.Name, p.Description, string(attrs), p.Price, p.Stock, string(subs), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: update product: %w", err)
	}
	if err := s.versionCheck(ctx, "products", p.ID, tag, catalog.ErrProductNotFound, catalog.ErrVersionConflict); err != nil {
		return err
	}
	p.Version++
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("postgres: delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) QueryProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	q, args := productQuery(f)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query products: %w", err)
	}
	defer rows.Close()

	out := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: query products: %w", err)
	}
	return out, nil
}
