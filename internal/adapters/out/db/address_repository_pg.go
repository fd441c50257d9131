package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	addressdom "storefront/internal/domain/address"
	"storefront/internal/infra/database"
)

type AddressRepositoryPG struct {
	DB       *sql.DB
	Notifier *Notifier
}

func NewAddressRepositoryPG(db *sql.DB, n *Notifier) *AddressRepositoryPG {
	return &AddressRepositoryPG{DB: db, Notifier: n}
}

func (r *AddressRepositoryPG) Create(ctx context.Context, userID string, in addressdom.Input) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", addressdom.ErrInvalidUserID
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	const q = `
INSERT INTO user_addresses (
  id, user_id, address_line1, address_line2, city, state, postal_code, country, type, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`
	_, err = r.DB.ExecContext(ctx, q,
		id.String(), userID,
		in.AddressLine1, in.AddressLine2, in.City, in.State, in.PostalCode, in.Country, string(in.Type),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", addressdom.ErrConflict
		}
		return "", err
	}
	return id.String(), nil
}

func (r *AddressRepositoryPG) Update(ctx context.Context, userID, id string, in addressdom.Input) error {
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	if userID == "" {
		return addressdom.ErrInvalidUserID
	}
	if id == "" {
		return addressdom.ErrInvalidID
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}

	const q = `
UPDATE user_addresses SET
  address_line1 = $3,
  address_line2 = $4,
  city          = $5,
  state         = $6,
  postal_code   = $7,
  country       = $8,
  type          = $9,
  updated_at    = now()
WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, q,
		userID, id,
		in.AddressLine1, in.AddressLine2, in.City, in.State, in.PostalCode, in.Country, string(in.Type),
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *AddressRepositoryPG) Delete(ctx context.Context, userID, id string) error {
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	if userID == "" {
		return addressdom.ErrInvalidUserID
	}
	if id == "" {
		return addressdom.ErrInvalidID
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM user_addresses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *AddressRepositoryPG) List(ctx context.Context, userID string) ([]addressdom.Address, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, addressdom.ErrInvalidUserID
	}

	const q = `
SELECT id, address_line1, address_line2, city, state, postal_code, country, type, created_at, updated_at
FROM user_addresses
WHERE user_id = $1
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []addressdom.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Watch reloads the list after every notification for userID.
func (r *AddressRepositoryPG) Watch(ctx context.Context, userID string, fn func(addressdom.ListEvent)) (func(), error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, addressdom.ErrInvalidUserID
	}
	return watch(ctx, r.Notifier, database.AddressesChannel, userID, func(ctx context.Context) {
		items, err := r.List(ctx, userID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			fn(addressdom.ListEvent{Items: []addressdom.Address{}, Err: err})
			return
		}
		fn(addressdom.ListEvent{Items: items})
	})
}

func scanAddress(s rowScanner) (addressdom.Address, error) {
	var (
		a   addressdom.Address
		typ string
	)
	if err := s.Scan(
		&a.ID, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State, &a.PostalCode, &a.Country,
		&typ, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return addressdom.Address{}, err
	}
	a.Type = addressdom.Type(typ)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return addressdom.ErrNotFound
	}
	return nil
}
