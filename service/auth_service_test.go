// file: service/auth_service_test.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"dishguru-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testUserID = "6f1c7c1e-8f3a-4a4e-9d2b-0a4d1c2b3e4f"

// memoryStore keeps users and their refresh-token slot in memory so the
// rotation sequence can be checked end to end.
type memoryStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemoryStore(users ...*model.User) *memoryStore {
	s := &memoryStore{users: map[string]*model.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memoryStore) copyOf(u *model.User) *model.User {
	c := *u
	if u.RefreshToken != nil {
		tok := *u.RefreshToken
		c.RefreshToken = &tok
	}
	return &c
}

func (s *memoryStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = s.copyOf(u)
	return nil
}

func (s *memoryStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return s.copyOf(u), nil
	}
	return nil, sql.ErrNoRows
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return s.copyOf(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memoryStore) FindByUsername(context.Context, string) (*model.User, error) {
	return nil, sql.ErrNoRows
}
func (s *memoryStore) AddFavorite(context.Context, string, string) error { return nil }
func (s *memoryStore) RemoveFavorite(context.Context, string, string) (bool, error) {
	return false, nil
}

func (s *memoryStore) Set(_ context.Context, id, token string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.RefreshToken, u.UpdatedAt = &token, now
	return nil
}

func (s *memoryStore) Rotate(_ context.Context, id, current, next string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken, u.UpdatedAt = &next, now
	return true, nil
}

func (s *memoryStore) Clear(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.RefreshToken, u.UpdatedAt = nil, now
	}
	return nil
}

func (s *memoryStore) slot(id string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].RefreshToken
}

func newAuthFixture(t *testing.T) (*AuthService, *memoryStore, *fakeClock) {
	t.Helper()
	hasher := NewPasswordHasher(bcrypt.MinCost)
	digest, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	store := newMemoryStore(&model.User{
		ID: testUserID, Username: "cook", Email: "cook@example.com", PasswordHash: digest,
	})
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return NewAuthService(store, store, newTestTokens(clock), hasher), store, clock
}

func TestAuthService_Login(t *testing.T) {
	svc, store, clock := newAuthFixture(t)
	ctx := context.Background()

	t.Run("success stores the refresh token", func(t *testing.T) {
		res, err := svc.Login(ctx, " Cook@Example.com ", "correct-horse")
		require.NoError(t, err)

		assert.Equal(t, testUserID, res.User.ID)
		assert.NotEmpty(t, res.Tokens.AccessToken)
		require.NotNil(t, store.slot(testUserID))
		assert.Equal(t, res.Tokens.RefreshToken, *store.slot(testUserID))
		assert.Equal(t, clock.t, store.users[testUserID].UpdatedAt)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, errWrong := svc.Login(ctx, "cook@example.com", "wrong")
		_, errUnknown := svc.Login(ctx, "ghost@example.com", "correct-horse")

		assert.ErrorIs(t, errWrong, ErrUnauthorized)
		assert.Equal(t, errWrong, errUnknown)
		assert.Equal(t, "Invalid credentials.", errWrong.Error())
	})
}

func TestAuthService_RefreshRotation(t *testing.T) {
	svc, store, clock := newAuthFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "cook@example.com", "correct-horse")
	require.NoError(t, err)
	r1 := login.Tokens.RefreshToken

	clock.Advance(time.Minute)
	pair, err := svc.Refresh(ctx, r1)
	require.NoError(t, err)
	r2 := pair.RefreshToken
	assert.NotEqual(t, r1, r2)
	assert.Equal(t, r2, *store.slot(testUserID))

	t.Run("old token is single use", func(t *testing.T) {
		_, err := svc.Refresh(ctx, r1)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, r2, *store.slot(testUserID), "failed refresh leaves the slot alone")
	})

	t.Run("new access token authenticates", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, testUserID, user.ID)
	})

	t.Run("logout revokes the current refresh token", func(t *testing.T) {
		svc.Logout(ctx, testUserID)
		assert.Nil(t, store.slot(testUserID))

		_, err := svc.Refresh(ctx, r2)
		assert.ErrorIs(t, err, ErrRefreshNotRecognized)
	})
}

func TestAuthService_RefreshRejects(t *testing.T) {
	svc, _, clock := newAuthFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "cook@example.com", "correct-horse")
	require.NoError(t, err)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, login.Tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("valid signature for an unknown user", func(t *testing.T) {
		orphan, err := svc.tokens.IssueRefreshToken("00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, orphan)
		assert.ErrorIs(t, err, ErrRefreshNotRecognized)
	})

	t.Run("expired", func(t *testing.T) {
		clock.Advance(8 * 24 * time.Hour)
		_, err := svc.Refresh(ctx, login.Tokens.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestAuthService_RefreshLosesRace(t *testing.T) {
	users := new(MockUserRepository)
	slots := new(MockTokenRepository)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	tokens := newTestTokens(clock)
	svc := NewAuthService(users, slots, tokens, NewPasswordHasher(bcrypt.MinCost))

	presented, err := tokens.IssueRefreshToken(testUserID)
	require.NoError(t, err)
	users.On("FindByID", mock.Anything, testUserID).
		Return(&model.User{ID: testUserID, RefreshToken: &presented}, nil)
	slots.On("Rotate", mock.Anything, testUserID, presented, mock.AnythingOfType("string"), clock.t).
		Return(false, nil)

	_, err = svc.Refresh(context.Background(), presented)
	assert.ErrorIs(t, err, ErrRefreshNotRecognized)
	users.AssertExpectations(t)
	slots.AssertExpectations(t)
}

func TestAuthService_Logout_SwallowsStoreErrors(t *testing.T) {
	slots := new(MockTokenRepository)
	svc := NewAuthService(nil, slots, newTestTokens(&fakeClock{t: time.Unix(0, 0)}), nil)

	slots.On("Clear", mock.Anything, testUserID, mock.Anything).Return(errors.New("connection reset"))

	assert.NotPanics(t, func() { svc.Logout(context.Background(), testUserID) })
	slots.AssertExpectations(t)
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, store, clock := newAuthFixture(t)
	ctx := context.Background()

	access, err := svc.tokens.IssueAccessToken(testUserID)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, access)
		require.NoError(t, err)
		assert.Equal(t, "cook", user.Username)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrMissingAccessToken)
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		refresh, err := svc.tokens.IssueRefreshToken(testUserID)
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, refresh)
		assert.ErrorIs(t, err, ErrInvalidAccessToken)
	})

	t.Run("no subject", func(t *testing.T) {
		tok, err := svc.tokens.IssueAccessToken("")
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, tok)
		assert.ErrorIs(t, err, ErrAccessTokenNoSubject)
	})

	t.Run("deleted user", func(t *testing.T) {
		delete(store.users, testUserID)
		_, err := svc.Authenticate(ctx, access)
		assert.ErrorIs(t, err, ErrAccessTokenNoSuchUser)
	})

	t.Run("expired", func(t *testing.T) {
		clock.Advance(time.Hour)
		_, err := svc.Authenticate(ctx, access)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
