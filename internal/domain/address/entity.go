// internal/domain/address/entity.go
package address

import (
	"errors"
	"strings"
	"time"
)

// Type labels an address for display (home, work, ...).
type Type string

const (
	TypeHome  Type = "home"
	TypeWork  Type = "work"
	TypeOther Type = "other"
)

// Address is one entry of a user's saved address list.
type Address struct {
	ID           string    `json:"id"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 string    `json:"addressLine2"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postalCode"`
	Country      string    `json:"country"`
	Type         Type      `json:"type"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input is the client-supplied body for create and update.
type Input struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Type         Type   `json:"type"`
}

var (
	ErrInvalidID           = errors.New("address: invalid id")
	ErrInvalidUserID       = errors.New("address: invalid userId")
	ErrInvalidAddressLine1 = errors.New("address: invalid addressLine1")
	ErrInvalidCity         = errors.New("address: invalid city")
	ErrInvalidCountry      = errors.New("address: invalid country")
	ErrInvalidType         = errors.New("address: invalid type")
)

// Normalize trims every field and defaults Type to home.
func (in Input) Normalize() Input {
	in.AddressLine1 = strings.TrimSpace(in.AddressLine1)
	in.AddressLine2 = strings.TrimSpace(in.AddressLine2)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Country = strings.TrimSpace(in.Country)
	in.Type = Type(strings.ToLower(strings.TrimSpace(string(in.Type))))
	if in.Type == "" {
		in.Type = TypeHome
	}
	return in
}

// Validate checks a normalized input.
func (in Input) Validate() error {
	if in.AddressLine1 == "" {
		return ErrInvalidAddressLine1
	}
	if in.City == "" {
		return ErrInvalidCity
	}
	if in.Country == "" {
		return ErrInvalidCountry
	}
	switch in.Type {
	case TypeHome, TypeWork, TypeOther:
	default:
		return ErrInvalidType
	}
	return nil
}

// New builds an address from a validated input.
func New(id string, in Input, now time.Time) (Address, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Address{}, ErrInvalidID
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Address{}, err
	}
	now = now.UTC()
	return Address{
		ID:           id,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Country:      in.Country,
		Type:         in.Type,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Input returns the editable fields of a.
func (a Address) Input() Input {
	return Input{
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		Type:         a.Type,
	}
}
