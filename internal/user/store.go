package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNotFound       = errors.New("user not found")
	ErrInvalidInput   = errors.New("invalid user input")
)

const bcryptCost = 10

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Create hashes the plaintext password and persists a new account. Emails are
// case-normalized before the uniqueness check so Foo@x.com and foo@x.com are
// the same account.
func (s *Store) Create(ctx context.Context, name, email, passwordPlain, role string) (User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || passwordPlain == "" {
		return User{}, ErrInvalidInput
	}
	if !ValidRole(role) {
		return User{}, ErrInvalidInput
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, email).Scan(&exists)
	if err == nil {
		return User{}, ErrDuplicateEmail
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwordPlain), bcryptCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		ProfileImage: DefaultProfileImage,
		CreatedAt:    time.Now().Unix(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, profile_image, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.ProfileImage, u.CreatedAt)
	if err != nil {
		// the UNIQUE constraint is the authority; the pre-check only covers
		// the common path
		if isUniqueViolation(err) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	return u, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (User, error) {
	email = NormalizeEmail(email)
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, profile_image, created_at
		 FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.ProfileImage, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// CheckPassword compares a candidate password against the stored hash. The
// error is deliberately opaque: callers map it to the same response as an
// unknown email.
func CheckPassword(u User, passwordPlain string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(passwordPlain))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
