package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pemapp/internal/models"
)

// ErrDuplicateEmail is returned when registering an address that already has
// an account. Surfaced inline in the auth form, never as a global failure.
var ErrDuplicateEmail = errors.New("repository: email already registered")

// UserRepository persists accounts. Passwords are stored bcrypt-hashed; the
// plaintext never leaves the registration or login call.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, email, name, password string) (*models.User, error) {
	var existing models.User
	err := r.db.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: string(hashed),
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// Two concurrent registrations for the same address can both pass
		// the lookup above; the unique index on email decides the loser.
		if isDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// isDuplicateKey reports whether err is a unique-constraint violation, either
// as gorm's translated sentinel or as the raw Postgres 23505 error.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "email = ?", email)
	return &user, result.Error
}
