package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"prodplan/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (int, error) {
	query := `
        INSERT INTO users (email, password_hash, created_at)
        VALUES ($1, $2, NOW())
        RETURNING id
    `
	var id int
	if err := r.db.QueryRow(ctx, query, email, passwordHash).Scan(&id); err != nil {
		r.logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", email),
		)
		return 0, err
	}

	r.logger.Info("User created", zap.Int("user_id", id))
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, email, password_hash, created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch user", zap.Error(err))
		return nil, err
	}
	return &u, nil
}
