package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/database"
)

type ProfileRepositoryPG struct {
	DB       *sql.DB
	Notifier *Notifier
}

func NewProfileRepositoryPG(db *sql.DB, n *Notifier) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{DB: db, Notifier: n}
}

func (r *ProfileRepositoryPG) Get(ctx context.Context, uid string) (userdom.Profile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, userdom.ErrInvalidUID
	}
	const q = `
SELECT uid, name, email, phone, profile_pic, created_at, updated_at
FROM user_profiles
WHERE uid = $1`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, q, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return userdom.Profile{}, userdom.ErrNotFound
		}
		return userdom.Profile{}, err
	}
	return p, nil
}

// Create inserts a new profile; updated_at is assigned by the server.
func (r *ProfileRepositoryPG) Create(ctx context.Context, p userdom.Profile) error {
	p.UID = strings.TrimSpace(p.UID)
	if p.UID == "" {
		return userdom.ErrInvalidUID
	}
	var createdAt any
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.UTC()
	}

	const q = `
INSERT INTO user_profiles (uid, name, email, phone, profile_pic, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), now())`
	_, err := r.DB.ExecContext(ctx, q, p.UID, p.Name, p.Email, p.Phone, p.ProfilePic, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return userdom.ErrConflict
		}
		return err
	}
	return nil
}

// Merge upserts the patched columns; NULL parameters keep the stored value.
func (r *ProfileRepositoryPG) Merge(ctx context.Context, uid string, patch userdom.Patch) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.ErrInvalidUID
	}
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return err
	}

	const q = `
INSERT INTO user_profiles (uid, name, email, phone, profile_pic, created_at, updated_at)
VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), now(), now())
ON CONFLICT (uid) DO UPDATE SET
  name        = COALESCE($2, user_profiles.name),
  email       = COALESCE($3, user_profiles.email),
  phone       = COALESCE($4, user_profiles.phone),
  profile_pic = COALESCE($5, user_profiles.profile_pic),
  updated_at  = now()`
	_, err := r.DB.ExecContext(ctx, q,
		uid,
		nullable(patch.Name),
		nullable(patch.Email),
		nullable(patch.Phone),
		nullable(patch.ProfilePic),
	)
	return err
}

// Watch reloads the row after every notification for uid.
func (r *ProfileRepositoryPG) Watch(ctx context.Context, uid string, fn func(userdom.ProfileEvent)) (func(), error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, userdom.ErrInvalidUID
	}
	return watch(ctx, r.Notifier, database.ProfilesChannel, uid, func(ctx context.Context) {
		p, err := r.Get(ctx, uid)
		if ctx.Err() != nil {
			return
		}
		switch {
		case errors.Is(err, userdom.ErrNotFound):
			fn(userdom.ProfileEvent{Missing: true})
		case err != nil:
			fn(userdom.ProfileEvent{Err: err})
		default:
			fn(userdom.ProfileEvent{Profile: p})
		}
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(s rowScanner) (userdom.Profile, error) {
	var p userdom.Profile
	if err := s.Scan(&p.UID, &p.Name, &p.Email, &p.Phone, &p.ProfilePic, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return userdom.Profile{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func nullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
