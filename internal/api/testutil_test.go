package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Pankajjr12/snapnest-api/internal/auth"
	"github.com/Pankajjr12/snapnest-api/internal/database"
	"github.com/Pankajjr12/snapnest-api/internal/models"
	redisclient "github.com/Pankajjr12/snapnest-api/internal/redis"
	"github.com/Pankajjr12/snapnest-api/internal/service"
	"github.com/Pankajjr12/snapnest-api/internal/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRedis(t *testing.T) (*redisclient.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redisclient.NewClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("creating test redis client: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}
	return tokens
}

func newTestHasher(t *testing.T) *auth.Hasher {
	t.Helper()
	h, err := auth.NewHasher(auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	if err != nil {
		t.Fatalf("creating hasher: %v", err)
	}
	return h
}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockUserRepo implements database.UserRepository.
type mockUserRepo struct {
	CreateFn        func(ctx context.Context, user *models.User) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	DeleteFn        func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockFollowRepo implements database.FollowRepository.
type mockFollowRepo struct {
	CreateFn         func(ctx context.Context, follower, following int64) (bool, error)
	DeleteFn         func(ctx context.Context, follower, following int64) (bool, error)
	ExistsFn         func(ctx context.Context, follower, following int64) (bool, error)
	CountFollowersFn func(ctx context.Context, userID int64) (int64, error)
	CountFollowingFn func(ctx context.Context, userID int64) (int64, error)
}

func (m *mockFollowRepo) Create(ctx context.Context, follower, following int64) (bool, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, follower, following)
	}
	return true, nil
}

func (m *mockFollowRepo) Delete(ctx context.Context, follower, following int64) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, follower, following)
	}
	return true, nil
}

func (m *mockFollowRepo) Exists(ctx context.Context, follower, following int64) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, follower, following)
	}
	return false, nil
}

func (m *mockFollowRepo) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	if m.CountFollowersFn != nil {
		return m.CountFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepo) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	if m.CountFollowingFn != nil {
		return m.CountFollowingFn(ctx, userID)
	}
	return 0, nil
}

// memStore backs both mocks with maps so flows spanning several requests
// see each other's writes.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
	edges  map[[2]int64]bool
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]*models.User{}, edges: map[[2]int64]bool{}}
}

func (s *memStore) findUser(match func(*models.User) bool) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *memStore) userRepo() *mockUserRepo {
	return &mockUserRepo{
		CreateFn: func(_ context.Context, user *models.User) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, u := range s.users {
				if u.Email == user.Email {
					return database.ErrDuplicateEmail
				}
				if u.Username == user.Username {
					return database.ErrDuplicateUsername
				}
			}
			s.nextID++
			user.ID = s.nextID
			user.CreatedAt = time.Now()
			user.UpdatedAt = user.CreatedAt
			cp := *user
			s.users[user.ID] = &cp
			return nil
		},
		GetByIDFn: func(_ context.Context, id int64) (*models.User, error) {
			return s.findUser(func(u *models.User) bool { return u.ID == id }), nil
		},
		GetByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return s.findUser(func(u *models.User) bool { return u.Username == username }), nil
		},
		GetByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return s.findUser(func(u *models.User) bool { return u.Email == email }), nil
		},
	}
}

func (s *memStore) followRepo() *mockFollowRepo {
	count := func(match func([2]int64) bool) int64 {
		s.mu.Lock()
		defer s.mu.Unlock()
		var n int64
		for k := range s.edges {
			if match(k) {
				n++
			}
		}
		return n
	}
	return &mockFollowRepo{
		CreateFn: func(_ context.Context, follower, following int64) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			key := [2]int64{follower, following}
			if s.edges[key] {
				return false, nil
			}
			s.edges[key] = true
			return true, nil
		},
		DeleteFn: func(_ context.Context, follower, following int64) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			key := [2]int64{follower, following}
			existed := s.edges[key]
			delete(s.edges, key)
			return existed, nil
		},
		ExistsFn: func(_ context.Context, follower, following int64) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.edges[[2]int64{follower, following}], nil
		},
		CountFollowersFn: func(_ context.Context, userID int64) (int64, error) {
			return count(func(k [2]int64) bool { return k[1] == userID }), nil
		},
		CountFollowingFn: func(_ context.Context, userID int64) (int64, error) {
			return count(func(k [2]int64) bool { return k[0] == userID }), nil
		},
	}
}

// mockFileStorage is an in-memory service.FileStorage.
type mockFileStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMockFileStorage() *mockFileStorage {
	return &mockFileStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *mockFileStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *mockFileStorage) Open(_ context.Context, key string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: m.types[key],
		Size:        int64(len(data)),
	}, nil
}

func (m *mockFileStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

// ---------------------------------------------------------------------------
// Full router
// ---------------------------------------------------------------------------

type testServer struct {
	e      *echo.Echo
	store  *memStore
	files  *mockFileStorage
	tokens *auth.TokenService
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := discardLogger()
	store := newMemStore()
	files := newMockFileStorage()
	tokens := newTestTokens(t)
	rdb, mr := newTestRedis(t)

	users := store.userRepo()
	images := service.NewImageStore(files, log)
	authSvc := service.NewAuthService(users, newTestHasher(t), tokens, images, log)
	social := service.NewSocialService(users, store.followRepo(), authSvc, rdb, log)

	e := echo.New()
	SetupRouter(e, &Dependencies{
		Auth:         NewAuthHandler(authSvc, auth.CookiePolicy{}),
		Users:        NewUserHandler(social),
		Uploads:      NewUploadHandler(images),
		TokenService: tokens,
		HealthChecks: map[string]Pinger{"redis": rdb},
	})
	return &testServer{e: e, store: store, files: files, tokens: tokens, redis: mr}
}

// do sends a request through the router. A non-empty token is sent as the
// session cookie.
func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// sessionCookie returns the session token set on rec, if any.
func sessionCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c.Value
		}
	}
	return ""
}
