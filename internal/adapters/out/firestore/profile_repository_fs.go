package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	userdom "storefront/internal/domain/user"
)

const usersCollection = "users"

// ProfileRepositoryFS stores profiles at users/{uid}.
type ProfileRepositoryFS struct {
	Client *firestore.Client
}

func NewProfileRepositoryFS(client *firestore.Client) *ProfileRepositoryFS {
	return &ProfileRepositoryFS{Client: client}
}

func (r *ProfileRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(usersCollection)
}

func (r *ProfileRepositoryFS) Get(ctx context.Context, uid string) (userdom.Profile, error) {
	if r.Client == nil {
		return userdom.Profile{}, errors.New("firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, userdom.ErrInvalidUID
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	if err != nil {
		return userdom.Profile{}, err
	}
	return docToProfile(snap)
}

// Create writes a new profile; updatedAt is assigned by the server.
func (r *ProfileRepositoryFS) Create(ctx context.Context, p userdom.Profile) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	p.UID = strings.TrimSpace(p.UID)
	if p.UID == "" {
		return userdom.ErrInvalidUID
	}

	data := map[string]any{
		"name":       p.Name,
		"email":      p.Email,
		"phone":      p.Phone,
		"profilePic": p.ProfilePic,
		"createdAt":  firestore.ServerTimestamp,
		"updatedAt":  firestore.ServerTimestamp,
	}
	if !p.CreatedAt.IsZero() {
		data["createdAt"] = p.CreatedAt.UTC()
	}

	if _, err := r.col().Doc(p.UID).Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return userdom.ErrConflict
		}
		return err
	}
	return nil
}

// Merge writes only the patched fields. A missing document is created.
func (r *ProfileRepositoryFS) Merge(ctx context.Context, uid string, patch userdom.Patch) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.ErrInvalidUID
	}
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return err
	}

	ref := r.col().Doc(uid)
	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		data := patchToDocData(patch)
		data["updatedAt"] = firestore.ServerTimestamp

		_, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			data["createdAt"] = firestore.ServerTimestamp
		case err != nil:
			return err
		}
		return tx.Set(ref, data, firestore.MergeAll)
	})
}

// Watch streams the document through Firestore snapshot listeners.
func (r *ProfileRepositoryFS) Watch(ctx context.Context, uid string, fn func(userdom.ProfileEvent)) (func(), error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, userdom.ErrInvalidUID
	}

	ctx, cancel := context.WithCancel(ctx)
	it := r.col().Doc(uid).Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					fn(userdom.ProfileEvent{Err: err})
				}
				return
			}
			if !snap.Exists() {
				fn(userdom.ProfileEvent{Missing: true})
				continue
			}
			p, err := docToProfile(snap)
			if err != nil {
				fn(userdom.ProfileEvent{Err: err})
				continue
			}
			fn(userdom.ProfileEvent{Profile: p})
		}
	}()

	return cancel, nil
}

func docToProfile(doc *firestore.DocumentSnapshot) (userdom.Profile, error) {
	var raw struct {
		Name       string    `firestore:"name"`
		Email      string    `firestore:"email"`
		Phone      string    `firestore:"phone"`
		ProfilePic string    `firestore:"profilePic"`
		CreatedAt  time.Time `firestore:"createdAt"`
		UpdatedAt  time.Time `firestore:"updatedAt"`
	}
	if err := doc.DataTo(&raw); err != nil {
		return userdom.Profile{}, err
	}

	return userdom.Profile{
		UID:        strings.TrimSpace(doc.Ref.ID),
		Name:       strings.TrimSpace(raw.Name),
		Email:      strings.TrimSpace(raw.Email),
		Phone:      strings.TrimSpace(raw.Phone),
		ProfilePic: strings.TrimSpace(raw.ProfilePic),
		CreatedAt:  raw.CreatedAt.UTC(),
		UpdatedAt:  raw.UpdatedAt.UTC(),
	}, nil
}

func patchToDocData(p userdom.Patch) map[string]any {
	data := map[string]any{}
	if p.Name != nil {
		data["name"] = *p.Name
	}
	if p.Email != nil {
		data["email"] = *p.Email
	}
	if p.Phone != nil {
		data["phone"] = *p.Phone
	}
	if p.ProfilePic != nil {
		data["profilePic"] = *p.ProfilePic
	}
	return data
}
