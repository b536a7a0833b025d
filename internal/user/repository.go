package user

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// Store is the credential store. Create must enforce username uniqueness
// atomically and report a clash as ErrDuplicateKey.
type Store interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// DBTX is the subset of *pgxpool.Pool the repository uses.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db DBTX
}

func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

const selectUser = `SELECT id, username, password, contact, contact_type, profile_picture, created_at FROM users`

func (r *Repository) Create(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (username, password, contact, contact_type, profile_picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		user.Username, user.Password, user.Contact, user.ContactType, user.ProfilePicture,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, oops.Code("USER_DUPLICATE").
				With("username", user.Username).
				Wrap(ErrDuplicateKey)
		}
		return nil, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(errors.Join(ErrStoreUnavailable, err))
	}

	return user, nil
}

// FindByIdentifier matches either the username or the contact. When several
// rows share a contact the oldest one wins.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	query := selectUser + ` WHERE username = $1 OR contact = $1 ORDER BY id LIMIT 1`
	return r.findOne(ctx, "find by identifier", query, identifier)
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := selectUser + ` WHERE username = $1`
	return r.findOne(ctx, "find by username", query, username)
}

func (r *Repository) findOne(ctx context.Context, op, query, arg string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Password, &u.Contact, &u.ContactType, &u.ProfilePicture, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("USER_NOT_FOUND").Wrap(ErrNotFound)
		}
		return nil, oops.Code("USER_QUERY_FAILED").
			With("operation", op).
			Wrap(errors.Join(ErrStoreUnavailable, err))
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
