package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/out/memory"
	"storefront/internal/application/usecase"
	addressdom "storefront/internal/domain/address"
	userdom "storefront/internal/domain/user"
)

type flakyProfiles struct {
	*memory.ProfileRepository
	createErr error
	mergeErr  error
}

func (f *flakyProfiles) Create(ctx context.Context, p userdom.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.ProfileRepository.Create(ctx, p)
}

func (f *flakyProfiles) Merge(ctx context.Context, uid string, patch userdom.Patch) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	return f.ProfileRepository.Merge(ctx, uid, patch)
}

type flakyIdentity struct {
	*memory.Identity
	signOutErr error
}

func (f *flakyIdentity) SignOut(ctx context.Context, uid string) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	return f.Identity.SignOut(ctx, uid)
}

// gatedIdentity holds SignIn until release is closed.
type gatedIdentity struct {
	*memory.Identity
	entered chan struct{}
	release chan struct{}
}

func (g *gatedIdentity) SignIn(ctx context.Context, email, password string) (userdom.Identity, error) {
	close(g.entered)
	<-g.release
	return g.Identity.SignIn(ctx, email, password)
}

type authFixture struct {
	idp      *flakyIdentity
	profiles *flakyProfiles
	addrs    *memory.AddressRepository
	alerts   *usecase.Alerts
	store    *usecase.AuthStore
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	f := authFixture{
		idp:      &flakyIdentity{Identity: memory.NewIdentity()},
		profiles: &flakyProfiles{ProfileRepository: memory.NewProfileRepository()},
		addrs:    memory.NewAddressRepository(),
		alerts:   usecase.NewAlerts(0, nil),
	}
	f.store = usecase.NewAuthStore(usecase.AuthStoreConfig{
		Identity:  f.idp,
		Profiles:  f.profiles,
		Addresses: f.addrs,
		Pictures:  memory.Pictures{},
		Alerts:    f.alerts,
	}, testDeps())
	t.Cleanup(f.store.Close)
	return f
}

func ptr(s string) *string { return &s }

func TestAuth_SignupLoadsProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))

	st := f.store.State()
	assert.Equal(t, usecase.StatusAuthenticated, st.Status)
	assert.Equal(t, usecase.ProfileLoaded, st.ProfileStatus)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "Ana", st.Profile.Name)
	assert.Equal(t, "ana@example.com", st.Profile.Email)
}

func TestAuth_SignupIdentityFailureIsAuthError(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	err := f.store.Signup(ctx, "ana@example.com", "123", "Ana")
	var aerr *usecase.AuthError
	require.ErrorAs(t, err, &aerr)
	assert.ErrorIs(t, err, userdom.ErrWeakPassword)
	assert.Equal(t, usecase.StatusUnauthenticated, f.store.State().Status)
	assert.Len(t, f.alerts.List(), 1)
}

func TestAuth_SignupProfileFailureLeavesProfileMissing(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.profiles.createErr = errors.New("unavailable")

	err := f.store.Signup(ctx, "ana@example.com", "secret1", "Ana")
	var werr *usecase.ProfileWriteError
	require.ErrorAs(t, err, &werr)

	st := f.store.State()
	assert.Equal(t, usecase.StatusAuthenticated, st.Status)
	assert.Equal(t, usecase.ProfileMissing, st.ProfileStatus)

	f.profiles.createErr = nil
	require.NoError(t, f.store.CreateUserProfile(ctx, "", userdom.Patch{Phone: ptr("555")}))

	st = f.store.State()
	assert.Equal(t, usecase.ProfileLoaded, st.ProfileStatus)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "Ana", st.Profile.Name, "name falls back to the display name")
	assert.Equal(t, "555", st.Profile.Phone)
}

func TestAuth_LoginBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))
	require.NoError(t, f.store.Logout(ctx))

	err := f.store.Login(ctx, "ana@example.com", "wrong")
	var aerr *usecase.AuthError
	require.ErrorAs(t, err, &aerr)
	assert.ErrorIs(t, err, userdom.ErrInvalidCredentials)
	assert.Equal(t, usecase.StatusUnauthenticated, f.store.State().Status)

	require.NoError(t, f.store.Login(ctx, " ana@example.com ", "secret1"))
	assert.Equal(t, usecase.StatusAuthenticated, f.store.State().Status)
}

func TestAuth_StateTransitionsThroughAuthenticating(t *testing.T) {
	f := newAuthFixture(t)
	var mu sync.Mutex
	var seen []usecase.AuthStatus
	sub := f.store.SubscribeState(func(s usecase.AuthState) {
		mu.Lock()
		defer mu.Unlock()
		if len(seen) == 0 || seen[len(seen)-1] != s.Status {
			seen = append(seen, s.Status)
		}
	})
	defer sub.Unsubscribe()

	require.NoError(t, f.store.Signup(context.Background(), "ana@example.com", "secret1", "Ana"))
	require.NoError(t, f.store.Logout(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []usecase.AuthStatus{
		usecase.StatusUnauthenticated,
		usecase.StatusAuthenticating,
		usecase.StatusAuthenticated,
		usecase.StatusUnauthenticated,
	}, seen)
}

func TestAuth_UpdatePhoneKeepsOtherFields(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))
	_, err := f.store.UpdateProfilePicture(ctx, "image/png", []byte{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, f.store.UpdateUserProfile(ctx, userdom.Patch{Phone: ptr("123")}))

	p := f.store.State().Profile
	require.NotNil(t, p)
	assert.Equal(t, "123", p.Phone)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "data:image/png;base64,AQID", p.ProfilePic)
}

func TestAuth_UpdateProfilePictureRejectsNonImage(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))

	_, err := f.store.UpdateProfilePicture(ctx, "text/plain", []byte("hi"))
	var werr *usecase.ProfileWriteError
	require.ErrorAs(t, err, &werr)
	assert.ErrorIs(t, err, userdom.ErrInvalidPicture)
	assert.Empty(t, f.store.State().Profile.ProfilePic)
}

func TestAuth_UpdateProfileFailureKeepsCache(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))
	f.profiles.mergeErr = errors.New("timeout")

	err := f.store.UpdateUserProfile(ctx, userdom.Patch{Name: ptr("Bea")})
	var werr *usecase.ProfileWriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "Ana", f.store.State().Profile.Name)
}

func TestAuth_AddressesRequireSignIn(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.store.AddAddress(ctx, addressdom.Input{AddressLine1: "x", City: "y", Country: "z"})
	assert.True(t, usecase.IsAuthRequired(err))
	assert.True(t, usecase.IsAuthRequired(f.store.UpdateAddress(ctx, "a", addressdom.Input{})))
	assert.True(t, usecase.IsAuthRequired(f.store.DeleteAddress(ctx, "a")))
	assert.True(t, usecase.IsAuthRequired(f.store.UpdateUserProfile(ctx, userdom.Patch{Phone: ptr("1")})))
}

func TestAuth_FetchAddressesLifecycle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	var calls [][]addressdom.Address
	sub := f.store.FetchAddresses(func(v []addressdom.Address) { calls = append(calls, v) })

	require.Len(t, calls, 1)
	require.NotNil(t, calls[0], "unauthenticated delivers an empty, non-nil list")
	assert.Empty(t, calls[0])

	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))
	id, err := f.store.AddAddress(ctx, addressdom.Input{AddressLine1: "1 Main", City: "Cebu", Country: "PH"})
	require.NoError(t, err)

	last := calls[len(calls)-1]
	require.Len(t, last, 1)
	assert.Equal(t, id, last[0].ID)

	require.NoError(t, f.store.UpdateAddress(ctx, id, addressdom.Input{AddressLine1: "2 Main", City: "Cebu", Country: "PH", Type: "work"}))
	last = calls[len(calls)-1]
	assert.Equal(t, "2 Main", last[0].AddressLine1)
	assert.Equal(t, addressdom.TypeWork, last[0].Type)

	require.NoError(t, f.store.DeleteAddress(ctx, id))
	assert.Empty(t, calls[len(calls)-1])

	sub.Unsubscribe()
	n := len(calls)
	sub.Unsubscribe()
	_, err = f.store.AddAddress(ctx, addressdom.Input{AddressLine1: "3 Main", City: "Cebu", Country: "PH"})
	require.NoError(t, err)
	assert.Len(t, calls, n, "no delivery after unsubscribe")
}

func TestAuth_AddressWriteErrors(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))

	_, err := f.store.AddAddress(ctx, addressdom.Input{City: "Cebu", Country: "PH"})
	var werr *usecase.AddressWriteError
	require.ErrorAs(t, err, &werr)
	assert.ErrorIs(t, err, addressdom.ErrInvalidAddressLine1)

	err = f.store.DeleteAddress(ctx, "missing")
	require.ErrorAs(t, err, &werr)
	assert.ErrorIs(t, err, addressdom.ErrNotFound)
}

func TestAuth_LogoutClearsCacheEvenOnTransportError(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))
	_, err := f.store.AddAddress(ctx, addressdom.Input{AddressLine1: "1 Main", City: "Cebu", Country: "PH"})
	require.NoError(t, err)
	require.Len(t, f.store.Addresses(), 1)

	f.idp.signOutErr = errors.New("network")
	err = f.store.Logout(ctx)
	var aerr *usecase.AuthError
	require.ErrorAs(t, err, &aerr)

	st := f.store.State()
	assert.Equal(t, usecase.StatusUnauthenticated, st.Status)
	assert.Nil(t, st.Profile)
	assert.Empty(t, f.store.Addresses())
}

func TestAuth_ResumeWithToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	id, err := f.idp.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	require.NoError(t, f.store.Resume(ctx, id.IDToken))
	st := f.store.State()
	assert.Equal(t, usecase.StatusAuthenticated, st.Status)
	assert.Equal(t, usecase.ProfileMissing, st.ProfileStatus)

	require.NoError(t, f.store.Logout(ctx))
	err = f.store.Resume(ctx, id.IDToken)
	var aerr *usecase.AuthError
	require.ErrorAs(t, err, &aerr)
	assert.ErrorIs(t, err, userdom.ErrInvalidToken)
}

func TestAuth_SwitchingUsersDropsOldWatches(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Signup(ctx, "ana@example.com", "secret1", "Ana"))
	anaUID := f.store.State().User.UID
	require.NoError(t, f.store.Signup(ctx, "bea@example.com", "secret1", "Bea"))

	require.NoError(t, f.profiles.Merge(ctx, anaUID, userdom.Patch{Name: ptr("Ana 2")}))
	assert.Equal(t, "Bea", f.store.State().Profile.Name)
}

func TestAuth_LogoutDuringLoginWins(t *testing.T) {
	ctx := context.Background()
	idp := &gatedIdentity{
		Identity: memory.NewIdentity(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	profiles := memory.NewProfileRepository()
	store := usecase.NewAuthStore(usecase.AuthStoreConfig{
		Identity:  idp,
		Profiles:  profiles,
		Addresses: memory.NewAddressRepository(),
		Alerts:    usecase.NewAlerts(0, nil),
	}, testDeps())
	t.Cleanup(store.Close)

	_, err := idp.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- store.Login(ctx, "ana@example.com", "secret1") }()

	<-idp.entered
	assert.Equal(t, usecase.StatusAuthenticating, store.State().Status)
	require.NoError(t, store.Logout(ctx))
	assert.Equal(t, usecase.StatusUnauthenticated, store.State().Status)
	close(idp.release)

	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("login did not return")
	}
	var aerr *usecase.AuthError
	require.ErrorAs(t, err, &aerr)
	assert.ErrorIs(t, err, usecase.ErrAuthCanceled)

	st := store.State()
	assert.Equal(t, usecase.StatusUnauthenticated, st.Status)
	assert.Nil(t, st.User)
	assert.Equal(t, usecase.ProfileNone, st.ProfileStatus)
	assert.Equal(t, 1, idp.SignOutCalls(), "voided identity is signed out")

	idp.release = make(chan struct{})
	idp.entered = make(chan struct{})
	close(idp.release)
	require.NoError(t, store.Login(ctx, "ana@example.com", "secret1"))
	assert.Equal(t, usecase.StatusAuthenticated, store.State().Status)
}
