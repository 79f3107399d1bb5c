package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/course-stream/internal/model"
	"github.com/iliyamo/course-stream/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,role,created_at,updated_at"

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Create hashes the password, inserts the user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (string, error) {
	hash, err := prepareUser(password, role, cost)
	if err != nil {
		return "", err
	}
	return insertUser(ctx, r.DB, normalizeEmail(email), hash, role)
}

// ReplaceRole removes every user holding role and creates one new account
// with it, in a single transaction.  The password is hashed before the
// transaction starts, so a failed hash or a taken email leaves the existing
// accounts in place.
func (r *UserRepo) ReplaceRole(ctx context.Context, email, password, role string, cost int) (string, int64, error) {
	hash, err := prepareUser(password, role, cost)
	if err != nil {
		return "", 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE role=?", role)
	if err != nil {
		return "", 0, fmt.Errorf("delete users: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return "", 0, fmt.Errorf("delete users: %w", err)
	}
	id, err := insertUser(ctx, tx, normalizeEmail(email), hash, role)
	if err != nil {
		return "", 0, err
	}
	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("commit: %w", err)
	}
	return id, removed, nil
}

func prepareUser(password, role string, cost int) (string, error) {
	if !model.ValidRole(role) {
		return "", fmt.Errorf("create user: unknown role %q", role)
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func insertUser(ctx context.Context, ex execer, email, hash, role string) (string, error) {
	id := uuid.NewString()
	_, err := ex.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, role) VALUES (?,?,?,?)",
		id, email, hash, role)
	if err != nil {
		if isDuplicate(err) {
			return "", ErrEmailExists
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
