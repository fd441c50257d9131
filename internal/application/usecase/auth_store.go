// internal/application/usecase/auth_store.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	addressdom "storefront/internal/domain/address"
	userdom "storefront/internal/domain/user"
	"storefront/internal/platform/live"
)

type AuthStatus string

const (
	StatusUnauthenticated AuthStatus = "unauthenticated"
	StatusAuthenticating  AuthStatus = "authenticating"
	StatusAuthenticated   AuthStatus = "authenticated"
)

type ProfileStatus string

const (
	ProfileNone    ProfileStatus = ""
	ProfileLoading ProfileStatus = "loading"
	ProfileLoaded  ProfileStatus = "loaded"
	ProfileMissing ProfileStatus = "missing"
)

var (
	ErrProfileUIDMismatch  = errors.New("profile: uid does not match signed-in user")
	ErrPicturesUnavailable = errors.New("profile: picture storage is not configured")
)

// AuthState is what the session knows about the signed-in user.
type AuthState struct {
	Status        AuthStatus        `json:"status"`
	ProfileStatus ProfileStatus     `json:"profileStatus,omitempty"`
	User          *userdom.Identity `json:"user,omitempty"`
	Profile       *userdom.Profile  `json:"profile,omitempty"`
}

func (s AuthState) clone() AuthState {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}

// AuthStore mirrors identity, profile and addresses from the remote store.
// Local profile and address state only changes through the live watches;
// writes are fire-and-observe.
//
// Subscribers run while the store lock is held and must not call back into
// the store.
type AuthStore struct {
	mu    sync.Mutex
	state AuthState
	gen   uint64
	stops []func()

	idp      userdom.IdentityProvider
	profiles userdom.Repository
	addrs    addressdom.Repository
	pictures userdom.PictureStore
	alerts   *Alerts
	deps     Deps
	log      *zap.Logger

	stateFeed *live.Feed[AuthState]
	addrFeed  *live.Feed[[]addressdom.Address]

	baseCtx context.Context
	cancel  context.CancelFunc
}

// AuthStoreConfig carries the remote collaborators of an AuthStore.
// Pictures may be nil.
type AuthStoreConfig struct {
	Identity  userdom.IdentityProvider
	Profiles  userdom.Repository
	Addresses addressdom.Repository
	Pictures  userdom.PictureStore
	Alerts    *Alerts
}

func NewAuthStore(cfg AuthStoreConfig, deps Deps) *AuthStore {
	deps = deps.WithDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	st := AuthState{Status: StatusUnauthenticated}
	return &AuthStore{
		state:     st,
		idp:       cfg.Identity,
		profiles:  cfg.Profiles,
		addrs:     cfg.Addresses,
		pictures:  cfg.Pictures,
		alerts:    cfg.Alerts,
		deps:      deps,
		log:       deps.Log.Named("auth"),
		stateFeed: live.NewFeed(st),
		addrFeed:  live.NewFeed([]addressdom.Address{}),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// State returns the current auth state.
func (s *AuthStore) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SubscribeState delivers the current state and every later change.
func (s *AuthStore) SubscribeState(fn func(AuthState)) live.Subscription {
	return s.stateFeed.Subscribe(fn)
}

// ========================================
// sign-in / sign-out
// ========================================

func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	g, err := s.begin("login")
	if err != nil {
		return err
	}
	id, err := s.idp.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return s.fail(g, "login", "Login failed", err)
	}
	if _, ok := s.adopt(g, id); !ok {
		return s.abandon(ctx, "login", id)
	}
	s.log.Info("[auth] login ok", zap.String("uid", id.UID))
	return nil
}

// Signup creates the identity, then the profile record. The two steps are
// not atomic: when the profile write fails the user stays signed in with
// ProfileMissing and a ProfileWriteError is returned; CreateUserProfile
// repairs it.
func (s *AuthStore) Signup(ctx context.Context, email, password, name string) error {
	g, err := s.begin("signup")
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	id, err := s.idp.SignUp(ctx, email, password, name)
	if err != nil {
		return s.fail(g, "signup", "Sign up failed", err)
	}

	p, perr := userdom.NewProfile(id.UID, name, email, s.deps.Clock.Now())
	if perr == nil {
		perr = s.profiles.Create(ctx, p)
	}
	g, ok := s.adopt(g, id)
	if !ok {
		return s.abandon(ctx, "signup", id)
	}
	if perr == nil {
		s.log.Info("[auth] signup ok", zap.String("uid", id.UID))
		return nil
	}

	s.mu.Lock()
	if s.gen == g && s.state.ProfileStatus != ProfileLoaded {
		s.state.ProfileStatus = ProfileMissing
		s.state.Profile = nil
		s.publishLocked()
	}
	s.mu.Unlock()

	werr := &ProfileWriteError{UID: id.UID, Err: perr}
	s.log.Warn("[auth] signup profile write failed", zap.String("uid", id.UID), zap.Error(perr))
	s.alerts.Push("Profile not saved", werr)
	return werr
}

// Resume adopts an identity token obtained elsewhere.
func (s *AuthStore) Resume(ctx context.Context, idToken string) error {
	g, err := s.begin("resume")
	if err != nil {
		return err
	}
	id, err := s.idp.Verify(ctx, strings.TrimSpace(idToken))
	if err != nil {
		return s.fail(g, "resume", "Session expired", err)
	}
	if _, ok := s.adopt(g, id); !ok {
		return s.abandon(ctx, "resume", id)
	}
	return nil
}

// Logout always ends unauthenticated with empty profile and address state.
// The returned AuthError only reports a failed remote sign-out.
func (s *AuthStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	uid := ""
	if s.state.User != nil {
		uid = s.state.User.UID
	}
	stops := s.resetLocked()
	s.mu.Unlock()
	runStops(stops)

	if uid == "" {
		return nil
	}
	if err := s.idp.SignOut(ctx, uid); err != nil {
		aerr := &AuthError{Op: "logout", Err: err}
		s.log.Warn("[auth] remote sign-out failed", zap.String("uid", uid), zap.Error(err))
		s.alerts.Push("Logout failed", aerr)
		return aerr
	}
	return nil
}

// Close stops every watch. The store is unusable afterwards.
func (s *AuthStore) Close() {
	s.mu.Lock()
	stops := s.resetLocked()
	s.mu.Unlock()
	runStops(stops)
	s.cancel()
}

// ========================================
// profile
// ========================================

// UpdateUserProfile merge-writes patch; unspecified fields are kept.
func (s *AuthStore) UpdateUserProfile(ctx context.Context, patch userdom.Patch) error {
	uid, err := s.requireUser("update profile")
	if err != nil {
		return err
	}
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return s.profileWriteFailed(uid, err)
	}
	if err := s.profiles.Merge(ctx, uid, patch); err != nil {
		return s.profileWriteFailed(uid, err)
	}
	return nil
}

// CreateUserProfile writes the profile record for the signed-in user. An
// empty uid means the current user. Fields missing from data fall back to
// the identity's display name and email.
func (s *AuthStore) CreateUserProfile(ctx context.Context, uid string, data userdom.Patch) error {
	cur, err := s.requireUser("create profile")
	if err != nil {
		return err
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		uid = cur
	}
	if uid != cur {
		return s.profileWriteFailed(uid, ErrProfileUIDMismatch)
	}

	st := s.State()
	if st.User == nil {
		return &AuthRequiredError{Op: "create profile"}
	}
	name, email := st.User.DisplayName, st.User.Email
	data = data.Normalize()
	if data.Name != nil {
		name = *data.Name
	}
	if data.Email != nil {
		email = *data.Email
	}

	p, err := userdom.NewProfile(uid, name, email, s.deps.Clock.Now())
	if err == nil {
		err = p.Apply(data, p.UpdatedAt)
	}
	if err != nil {
		return s.profileWriteFailed(uid, err)
	}

	err = s.profiles.Create(ctx, p)
	if errors.Is(err, userdom.ErrConflict) {
		err = s.profiles.Merge(ctx, uid, userdom.PatchFromProfile(p))
	}
	if err != nil {
		return s.profileWriteFailed(uid, err)
	}
	return nil
}

// UpdateProfilePicture uploads an image and merges its URL into the profile.
func (s *AuthStore) UpdateProfilePicture(ctx context.Context, contentType string, data []byte) (string, error) {
	uid, err := s.requireUser("update profile picture")
	if err != nil {
		return "", err
	}
	if s.pictures == nil {
		return "", s.profileWriteFailed(uid, ErrPicturesUnavailable)
	}
	if err := userdom.ValidatePicture(contentType, len(data)); err != nil {
		return "", s.profileWriteFailed(uid, err)
	}
	url, err := s.pictures.Put(ctx, uid, contentType, data)
	if err != nil {
		return "", s.profileWriteFailed(uid, err)
	}
	if err := s.profiles.Merge(ctx, uid, userdom.Patch{ProfilePic: &url}); err != nil {
		return "", s.profileWriteFailed(uid, err)
	}
	return url, nil
}

// ========================================
// addresses
// ========================================

// FetchAddresses delivers the current address list now and on every change.
// fn always receives a non-nil slice; it is empty while signed out.
func (s *AuthStore) FetchAddresses(fn func([]addressdom.Address)) live.Subscription {
	return s.addrFeed.Subscribe(func(v []addressdom.Address) {
		if v == nil {
			v = []addressdom.Address{}
		}
		fn(v)
	})
}

// Addresses returns the last delivered address list.
func (s *AuthStore) Addresses() []addressdom.Address {
	v, _ := s.addrFeed.Latest()
	return append([]addressdom.Address{}, v...)
}

// AddAddress writes a new address and returns its id. The list itself is
// updated through FetchAddresses once the store confirms the write.
func (s *AuthStore) AddAddress(ctx context.Context, in addressdom.Input) (string, error) {
	uid, err := s.requireUser("add address")
	if err != nil {
		return "", err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return "", s.addressWriteFailed("add", "", err)
	}
	id, err := s.addrs.Create(ctx, uid, in)
	if err != nil {
		return "", s.addressWriteFailed("add", "", err)
	}
	return id, nil
}

func (s *AuthStore) UpdateAddress(ctx context.Context, id string, in addressdom.Input) error {
	uid, err := s.requireUser("update address")
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return s.addressWriteFailed("update", id, addressdom.ErrInvalidID)
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return s.addressWriteFailed("update", id, err)
	}
	if err := s.addrs.Update(ctx, uid, id, in); err != nil {
		return s.addressWriteFailed("update", id, err)
	}
	return nil
}

func (s *AuthStore) DeleteAddress(ctx context.Context, id string) error {
	uid, err := s.requireUser("delete address")
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return s.addressWriteFailed("delete", id, addressdom.ErrInvalidID)
	}
	if err := s.addrs.Delete(ctx, uid, id); err != nil {
		return s.addressWriteFailed("delete", id, err)
	}
	return nil
}

// ========================================
// internals
// ========================================

// begin moves to Authenticating. A previous user's watches are stopped.
// begin enters Authenticating and returns the generation of the attempt.
// A later Logout or Close moves the generation and voids the attempt.
func (s *AuthStore) begin(op string) (uint64, error) {
	s.mu.Lock()
	if s.state.Status == StatusAuthenticating {
		s.mu.Unlock()
		err := &AuthError{Op: op, Err: ErrAuthInProgress}
		s.alerts.Push("Please wait", err)
		return 0, err
	}
	stops := s.resetLocked()
	g := s.gen
	s.state.Status = StatusAuthenticating
	s.publishLocked()
	s.mu.Unlock()
	runStops(stops)
	return g, nil
}

func (s *AuthStore) fail(g uint64, op, title string, cause error) error {
	s.mu.Lock()
	if s.gen == g {
		s.state = AuthState{Status: StatusUnauthenticated}
		s.publishLocked()
	}
	s.mu.Unlock()

	err := &AuthError{Op: op, Err: cause}
	s.log.Info("[auth] failed", zap.String("op", op), zap.Error(cause))
	s.alerts.Push(title, err)
	return err
}

// adopt marks id as signed in and starts its watches. It returns the
// generation the watches belong to, or false when attempt g was voided
// while the identity provider was working.
func (s *AuthStore) adopt(g uint64, id userdom.Identity) (uint64, bool) {
	s.mu.Lock()
	if s.gen != g {
		s.mu.Unlock()
		return 0, false
	}
	s.gen++
	g = s.gen
	s.state = AuthState{
		Status:        StatusAuthenticated,
		ProfileStatus: ProfileLoading,
		User:          &id,
	}
	s.publishLocked()
	s.mu.Unlock()

	s.startWatches(g, id.UID)
	return g, true
}

// abandon signs out an identity obtained by a voided attempt. The store
// state is left to whoever voided it.
func (s *AuthStore) abandon(ctx context.Context, op string, id userdom.Identity) error {
	s.log.Info("[auth] sign-in voided by logout", zap.String("op", op), zap.String("uid", id.UID))
	if err := s.idp.SignOut(ctx, id.UID); err != nil {
		s.log.Warn("[auth] sign-out of voided identity failed", zap.String("uid", id.UID), zap.Error(err))
	}
	return &AuthError{Op: op, Err: ErrAuthCanceled}
}

func (s *AuthStore) startWatches(g uint64, uid string) {
	var stops []func()

	stopProfile, err := s.profiles.Watch(s.baseCtx, uid, func(ev userdom.ProfileEvent) {
		s.onProfile(g, uid, ev)
	})
	if err != nil {
		s.onProfile(g, uid, userdom.ProfileEvent{Err: err})
	} else {
		stops = append(stops, stopProfile)
	}

	stopAddrs, err := s.addrs.Watch(s.baseCtx, uid, func(ev addressdom.ListEvent) {
		s.onAddresses(g, uid, ev)
	})
	if err != nil {
		s.onAddresses(g, uid, addressdom.ListEvent{Err: err})
	} else {
		stops = append(stops, stopAddrs)
	}

	s.mu.Lock()
	if s.gen != g {
		s.mu.Unlock()
		runStops(stops)
		return
	}
	s.stops = append(s.stops, stops...)
	s.mu.Unlock()
}

func (s *AuthStore) onProfile(g uint64, uid string, ev userdom.ProfileEvent) {
	if ev.Err != nil {
		s.mu.Lock()
		stale := s.gen != g
		s.mu.Unlock()
		if !stale {
			rerr := &ProfileReadError{UID: uid, Err: ev.Err}
			s.log.Warn("[auth] profile watch error", zap.String("uid", uid), zap.Error(ev.Err))
			s.alerts.Push("Profile unavailable", rerr)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != g {
		return
	}
	if ev.Missing {
		s.state.ProfileStatus = ProfileMissing
		s.state.Profile = nil
	} else {
		p := ev.Profile
		s.state.ProfileStatus = ProfileLoaded
		s.state.Profile = &p
	}
	s.publishLocked()
}

func (s *AuthStore) onAddresses(g uint64, uid string, ev addressdom.ListEvent) {
	if ev.Err != nil {
		s.mu.Lock()
		stale := s.gen != g
		s.mu.Unlock()
		if !stale {
			rerr := &ProfileReadError{UID: uid, Err: ev.Err}
			s.log.Warn("[auth] address watch error", zap.String("uid", uid), zap.Error(ev.Err))
			s.alerts.Push("Addresses unavailable", rerr)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != g {
		return
	}
	items := append([]addressdom.Address{}, ev.Items...)
	s.addrFeed.Publish(items)
}

func (s *AuthStore) requireUser(op string) (string, error) {
	s.mu.Lock()
	var uid string
	if s.state.Status == StatusAuthenticated && s.state.User != nil {
		uid = s.state.User.UID
	}
	s.mu.Unlock()

	if uid == "" {
		err := &AuthRequiredError{Op: op}
		s.alerts.Push("Sign in required", err)
		return "", err
	}
	return uid, nil
}

func (s *AuthStore) profileWriteFailed(uid string, cause error) error {
	err := &ProfileWriteError{UID: uid, Err: cause}
	s.log.Warn("[auth] profile write failed", zap.String("uid", uid), zap.Error(cause))
	s.alerts.Push("Profile not saved", err)
	return err
}

func (s *AuthStore) addressWriteFailed(op, id string, cause error) error {
	err := &AddressWriteError{Op: op, ID: id, Err: cause}
	s.log.Warn("[auth] address write failed", zap.String("op", op), zap.String("id", id), zap.Error(cause))
	s.alerts.Push("Address not saved", err)
	return err
}

// resetLocked clears user state, invalidates running watches and returns
// their stop funcs for the caller to run after unlocking.
func (s *AuthStore) resetLocked() []func() {
	stops := s.stops
	s.stops = nil
	s.gen++
	s.state = AuthState{Status: StatusUnauthenticated}
	s.publishLocked()
	s.addrFeed.Publish([]addressdom.Address{})
	return stops
}

func (s *AuthStore) publishLocked() {
	s.stateFeed.Publish(s.state.clone())
}

func runStops(stops []func()) {
	for _, stop := range stops {
		if stop != nil {
			stop()
		}
	}
}
