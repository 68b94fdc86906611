package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/lexilens/internal/domain/users"
)

type UserRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewUserRepository(db *sql.DB, d Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: d}
}

// Create inserts a user; a duplicate email yields domain.ErrEmailTaken
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (email, hashed_password, is_active, created_at)
VALUES (?,?,?,?)`
	u.CreatedAt = timestamp(u.CreatedAt)
	id, err := insertID(ctx, r.db, r.dialect, q, u.Email, u.HashedPassword, u.IsActive, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

// GetByEmail does an exact, case-sensitive lookup
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT id, email, hashed_password, is_active, created_at
FROM users
WHERE email = ?
LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, r.dialect.Rebind(q), email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `
SELECT id, email, hashed_password, is_active, created_at
FROM users
WHERE id = ?
LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, r.dialect.Rebind(q), id))
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	const q = `
SELECT id, email, hashed_password, is_active, created_at
FROM users
ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
