package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noryangjin/auction-server/internal/domain"
)

// UserRepository defines persistence access for marketplace accounts.
type UserRepository interface {
	// Create stores a new account and returns the stored copy carrying its id.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// The Update* methods each write only their own columns plus updated_at and return the
	// stored row, so concurrent changes to other columns survive.
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateStatus(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByEmailOrPhone returns an account holding either value, or ErrNotFound.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, phone_number, role, status, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.IsPersisted() {
		return nil, errors.New("user already has an id")
	}
	const query = `
        INSERT INTO users (email, password_hash, name, phone_number, role, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + userColumns

	snap := user.Snapshot()
	stored, err := scanUser(r.pool.QueryRow(ctx, query,
		snap.Email,
		snap.Password,
		snap.Name,
		snap.PhoneNumber,
		snap.Role,
		snap.Status,
		snap.CreatedAt,
		snap.UpdatedAt,
	))
	if err != nil {
		return nil, translateError("create user", err)
	}
	return stored, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
        UPDATE users SET name=$1, phone_number=$2, updated_at=$3
        WHERE id=$4
        RETURNING ` + userColumns

	snap := user.Snapshot()
	stored, err := scanUser(r.pool.QueryRow(ctx, query, snap.Name, snap.PhoneNumber, snap.UpdatedAt, snap.ID))
	if err != nil {
		return nil, translateError("update user profile", err)
	}
	return stored, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
        UPDATE users SET password_hash=$1, updated_at=$2
        WHERE id=$3
        RETURNING ` + userColumns

	snap := user.Snapshot()
	stored, err := scanUser(r.pool.QueryRow(ctx, query, snap.Password, snap.UpdatedAt, snap.ID))
	if err != nil {
		return nil, translateError("update user password", err)
	}
	return stored, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
        UPDATE users SET status=$1, updated_at=$2
        WHERE id=$3
        RETURNING ` + userColumns

	snap := user.Snapshot()
	stored, err := scanUser(r.pool.QueryRow(ctx, query, snap.Status, snap.UpdatedAt, snap.ID))
	if err != nil {
		return nil, translateError("update user status", err)
	}
	return stored, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError("get user by id", err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, translateError("get user by email", err)
	}
	return user, nil
}

func (r *userRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + ` FROM users
        WHERE email=$1 OR phone_number=$2
        ORDER BY (email=$1) DESC
        LIMIT 1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email, phone))
	if err != nil {
		return nil, translateError("find user by email or phone", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var snap domain.UserSnapshot
	if err := row.Scan(
		&snap.ID,
		&snap.Email,
		&snap.Password,
		&snap.Name,
		&snap.PhoneNumber,
		&snap.Role,
		&snap.Status,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return domain.RestoreUser(snap), nil
}
