package memory

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/google/uuid"

	userdom "storefront/internal/domain/user"
)

// MinPasswordLength matches the Firebase email/password provider.
const MinPasswordLength = 6

type account struct {
	uid         string
	email       string
	password    string
	displayName string
}

// Identity is an in-process identity provider for local runs and tests.
type Identity struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	byUID    map[string]*account
	tokens   map[string]string
	outCalls int
}

func NewIdentity() *Identity {
	return &Identity{
		byEmail: map[string]*account{},
		byUID:   map[string]*account{},
		tokens:  map[string]string{},
	}
}

func (p *Identity) SignIn(_ context.Context, email, password string) (userdom.Identity, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.byEmail[key]
	if !ok || subtle.ConstantTimeCompare([]byte(a.password), []byte(password)) != 1 {
		return userdom.Identity{}, userdom.ErrInvalidCredentials
	}
	return p.issueLocked(a), nil
}

func (p *Identity) SignUp(_ context.Context, email, password, displayName string) (userdom.Identity, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(key, "@") {
		return userdom.Identity{}, userdom.ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return userdom.Identity{}, userdom.ErrWeakPassword
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byEmail[key]; ok {
		return userdom.Identity{}, userdom.ErrEmailInUse
	}
	a := &account{
		uid:         uuid.NewString(),
		email:       key,
		password:    password,
		displayName: strings.TrimSpace(displayName),
	}
	p.byEmail[key] = a
	p.byUID[a.uid] = a
	return p.issueLocked(a), nil
}

// SignOut revokes every token issued to uid.
func (p *Identity) SignOut(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outCalls++
	for tok, owner := range p.tokens {
		if owner == uid {
			delete(p.tokens, tok)
		}
	}
	return nil
}

func (p *Identity) Verify(_ context.Context, idToken string) (userdom.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	uid, ok := p.tokens[idToken]
	if !ok {
		return userdom.Identity{}, userdom.ErrInvalidToken
	}
	a := p.byUID[uid]
	return userdom.Identity{UID: a.uid, Email: a.email, DisplayName: a.displayName, IDToken: idToken}, nil
}

// SignOutCalls reports how many times SignOut ran.
func (p *Identity) SignOutCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outCalls
}

func (p *Identity) issueLocked(a *account) userdom.Identity {
	tok := uuid.NewString()
	p.tokens[tok] = a.uid
	return userdom.Identity{
		UID:          a.uid,
		Email:        a.email,
		DisplayName:  a.displayName,
		IDToken:      tok,
		RefreshToken: uuid.NewString(),
	}
}
