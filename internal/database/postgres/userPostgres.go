package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		now,
	).Scan(&user.ID)

	if err != nil {
		// 23505 — нарушение уникальности username или email
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return entity.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %v", err)
	}

	user.CreatedAt = now
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, last_booking_at
		FROM users 
		WHERE id = $1
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}

	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, last_booking_at
		FROM users 
		WHERE username = $1
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %v", err)
	}

	return user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]*entity.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, last_booking_at
		FROM users 
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %v", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %v", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %v", err)
	}

	return users, nil
}

// GetInactive возвращает пользователей без бронирований после отметки времени
func (r *userRepository) GetInactive(ctx context.Context, before time.Time) ([]*entity.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, last_booking_at
		FROM users 
		WHERE role = 'user' AND (last_booking_at IS NULL OR last_booking_at < $1)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query inactive users: %v", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %v", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inactive users: %v", err)
	}

	return users, nil
}

// GetFirstAdmin returns the oldest admin account, used as the report recipient
func (r *userRepository) GetFirstAdmin(ctx context.Context) (*entity.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, last_booking_at
		FROM users 
		WHERE role = 'admin'
		ORDER BY id
		LIMIT 1
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin user: %v", err)
	}

	return user, nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		user          entity.User
		lastBookingAt sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&lastBookingAt,
	)
	if err != nil {
		return nil, err
	}

	if lastBookingAt.Valid {
		user.LastBookingAt = &lastBookingAt.Time
	}

	return &user, nil
}
