package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	addressdom "storefront/internal/domain/address"
)

const addressesCollection = "addresses"

// AddressRepositoryFS stores addresses at users/{uid}/addresses/{id}.
type AddressRepositoryFS struct {
	Client *firestore.Client
}

func NewAddressRepositoryFS(client *firestore.Client) *AddressRepositoryFS {
	return &AddressRepositoryFS{Client: client}
}

func (r *AddressRepositoryFS) col(userID string) *firestore.CollectionRef {
	return r.Client.Collection(usersCollection).Doc(userID).Collection(addressesCollection)
}

func (r *AddressRepositoryFS) Create(ctx context.Context, userID string, in addressdom.Input) (string, error) {
	if r.Client == nil {
		return "", errors.New("firestore client is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", addressdom.ErrInvalidUserID
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return "", err
	}

	ref := r.col(userID).NewDoc()
	data := addressToDocData(in)
	data["createdAt"] = firestore.ServerTimestamp
	data["updatedAt"] = firestore.ServerTimestamp

	if _, err := ref.Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", addressdom.ErrConflict
		}
		return "", err
	}
	return ref.ID, nil
}

func (r *AddressRepositoryFS) Update(ctx context.Context, userID, id string, in addressdom.Input) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
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

	data := addressToDocData(in)
	updates := make([]firestore.Update, 0, len(data)+1)
	for k, v := range data {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	if _, err := r.col(userID).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return addressdom.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *AddressRepositoryFS) Delete(ctx context.Context, userID, id string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	if userID == "" {
		return addressdom.ErrInvalidUserID
	}
	if id == "" {
		return addressdom.ErrInvalidID
	}

	if _, err := r.col(userID).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return addressdom.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *AddressRepositoryFS) List(ctx context.Context, userID string) ([]addressdom.Address, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, addressdom.ErrInvalidUserID
	}

	it := r.query(userID).Documents(ctx)
	defer it.Stop()

	out := []addressdom.Address{}
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		a, err := docToAddress(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Watch streams the whole sub-collection on every change.
func (r *AddressRepositoryFS) Watch(ctx context.Context, userID string, fn func(addressdom.ListEvent)) (func(), error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, addressdom.ErrInvalidUserID
	}

	ctx, cancel := context.WithCancel(ctx)
	it := r.query(userID).Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					fn(addressdom.ListEvent{Items: []addressdom.Address{}, Err: err})
				}
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				fn(addressdom.ListEvent{Items: []addressdom.Address{}, Err: err})
				continue
			}
			items := make([]addressdom.Address, 0, len(docs))
			for _, d := range docs {
				a, err := docToAddress(d)
				if err != nil {
					continue
				}
				items = append(items, a)
			}
			fn(addressdom.ListEvent{Items: items})
		}
	}()

	return cancel, nil
}

func (r *AddressRepositoryFS) query(userID string) firestore.Query {
	return r.col(userID).OrderBy("createdAt", firestore.Asc)
}

func docToAddress(doc *firestore.DocumentSnapshot) (addressdom.Address, error) {
	var raw struct {
		AddressLine1 string    `firestore:"addressLine1"`
		AddressLine2 string    `firestore:"addressLine2"`
		City         string    `firestore:"city"`
		State        string    `firestore:"state"`
		PostalCode   string    `firestore:"postalCode"`
		Country      string    `firestore:"country"`
		Type         string    `firestore:"type"`
		CreatedAt    time.Time `firestore:"createdAt"`
		UpdatedAt    time.Time `firestore:"updatedAt"`
	}
	if err := doc.DataTo(&raw); err != nil {
		return addressdom.Address{}, err
	}

	updatedAt := raw.UpdatedAt.UTC()
	if raw.UpdatedAt.IsZero() {
		updatedAt = raw.CreatedAt.UTC()
	}

	return addressdom.Address{
		ID:           strings.TrimSpace(doc.Ref.ID),
		AddressLine1: strings.TrimSpace(raw.AddressLine1),
		AddressLine2: strings.TrimSpace(raw.AddressLine2),
		City:         strings.TrimSpace(raw.City),
		State:        strings.TrimSpace(raw.State),
		PostalCode:   strings.TrimSpace(raw.PostalCode),
		Country:      strings.TrimSpace(raw.Country),
		Type:         addressdom.Type(strings.TrimSpace(raw.Type)),
		CreatedAt:    raw.CreatedAt.UTC(),
		UpdatedAt:    updatedAt,
	}, nil
}

func addressToDocData(in addressdom.Input) map[string]any {
	return map[string]any{
		"addressLine1": in.AddressLine1,
		"addressLine2": in.AddressLine2,
		"city":         in.City,
		"state":        in.State,
		"postalCode":   in.PostalCode,
		"country":      in.Country,
		"type":         string(in.Type),
	}
}
