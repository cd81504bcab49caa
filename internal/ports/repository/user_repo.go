package repository

import (
	"context"
	"database/sql"
	"strings"

	"truetime.service/internal/core/model"
)

// userRepository stores application users for the role-guarded API.
type userRepository struct {
	DB *sql.DB
}

// NewUserRepository create new instance
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, params CreateUserParams) (*model.User, error) {
	user := &model.User{
		Email:          strings.ToLower(params.Email),
		FullName:       params.FullName,
		HashedPassword: params.HashedPassword,
		Role:           params.Role,
		IsActive:       true,
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, full_name, hashed_password, role, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING id, created_at`,
		user.Email, user.FullName, user.HashedPassword, string(user.Role),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, translateDBError(err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, email, full_name, hashed_password, role, is_active, created_at
		 FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName, &user.HashedPassword,
			&user.Role, &user.IsActive, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, full_name, hashed_password, role, is_active, created_at
		 FROM users WHERE email = $1`, strings.ToLower(email),
	).Scan(&user.ID, &user.Email, &user.FullName, &user.HashedPassword,
		&user.Role, &user.IsActive, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
