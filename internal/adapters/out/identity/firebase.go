// Package identity adapts Firebase Authentication to user.IdentityProvider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	userdom "storefront/internal/domain/user"
)

// MinPasswordLength mirrors Firebase's password policy.
const MinPasswordLength = 6

// AdminClient is the subset of the Firebase admin auth client in use.
type AdminClient interface {
	CreateUser(ctx context.Context, user *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// PasswordVerifier signs a user in with email and password.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error)
}

// Firebase is a user.IdentityProvider backed by Firebase Authentication.
type Firebase struct {
	admin    AdminClient
	password PasswordVerifier
	log      *zap.Logger
}

func NewFirebase(admin AdminClient, password PasswordVerifier, log *zap.Logger) *Firebase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Firebase{admin: admin, password: password, log: log.Named("identity")}
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (userdom.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return userdom.Identity{}, userdom.ErrInvalidCredentials
	}
	if f.password == nil {
		return userdom.Identity{}, errors.New("identity: password sign-in is not configured")
	}

	resp, err := f.password.VerifyPassword(ctx, email, password)
	if err != nil {
		return userdom.Identity{}, mapToolkitError(err)
	}
	return userdom.Identity{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// SignUp creates the account with the admin SDK, then signs in to obtain
// tokens.
func (f *Firebase) SignUp(ctx context.Context, email, password, displayName string) (userdom.Identity, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" || !strings.Contains(email, "@") {
		return userdom.Identity{}, userdom.ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return userdom.Identity{}, userdom.ErrWeakPassword
	}
	if f.admin == nil {
		return userdom.Identity{}, errors.New("identity: admin client is not configured")
	}

	params := (&firebaseauth.UserToCreate{}).Email(email).Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	rec, err := f.admin.CreateUser(ctx, params)
	if err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return userdom.Identity{}, userdom.ErrEmailInUse
		}
		return userdom.Identity{}, fmt.Errorf("identity: create user: %w", err)
	}
	f.log.Info("[identity] user created", zap.String("uid", rec.UID))

	id, err := f.SignIn(ctx, email, password)
	if err != nil {
		return userdom.Identity{}, err
	}
	if id.DisplayName == "" {
		id.DisplayName = rec.DisplayName
	}
	return id, nil
}

// SignOut revokes the user's refresh tokens.
func (f *Firebase) SignOut(ctx context.Context, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" || f.admin == nil {
		return nil
	}
	if err := f.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("identity: revoke tokens: %w", err)
	}
	return nil
}

func (f *Firebase) Verify(ctx context.Context, idToken string) (userdom.Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return userdom.Identity{}, userdom.ErrInvalidToken
	}
	if f.admin == nil {
		return userdom.Identity{}, errors.New("identity: admin client is not configured")
	}

	tok, err := f.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return userdom.Identity{}, fmt.Errorf("%w: %w", userdom.ErrInvalidToken, err)
	}
	return userdom.Identity{
		UID:         tok.UID,
		Email:       claimString(tok.Claims, "email"),
		DisplayName: claimString(tok.Claims, "name"),
		IDToken:     idToken,
	}, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// mapToolkitError turns Identity Toolkit rejections into domain errors.
func mapToolkitError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
		msg := gerr.Message
		switch {
		case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
			strings.HasPrefix(msg, "INVALID_PASSWORD"),
			strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
			strings.HasPrefix(msg, "INVALID_EMAIL"),
			strings.HasPrefix(msg, "USER_DISABLED"):
			return fmt.Errorf("%w: %s", userdom.ErrInvalidCredentials, msg)
		}
	}
	return fmt.Errorf("identity: sign in: %w", err)
}

// ToolkitVerifier calls the Identity Toolkit verifyPassword endpoint.
type ToolkitVerifier struct {
	svc *identitytoolkit.Service
}

// NewToolkitVerifier authenticates with the project's web API key.
func NewToolkitVerifier(ctx context.Context, apiKey string) (*ToolkitVerifier, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("identity: api key is empty")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identity: identitytoolkit service: %w", err)
	}
	return &ToolkitVerifier{svc: svc}, nil
}

func (v *ToolkitVerifier) VerifyPassword(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	return v.svc.Relyingparty.VerifyPassword(req).Context(ctx).Do()
}
