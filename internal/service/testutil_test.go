package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Pankajjr12/snapnest-api/internal/auth"
	"github.com/Pankajjr12/snapnest-api/internal/database"
	"github.com/Pankajjr12/snapnest-api/internal/models"
	"github.com/Pankajjr12/snapnest-api/internal/redis"
	"github.com/Pankajjr12/snapnest-api/internal/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUsers is an in-memory UserRepository enforcing the same uniqueness
// rules as the users table.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User

	// getErr, when set, is returned by every lookup.
	getErr    error
	createErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.byID {
		if u.Email == user.Email {
			return database.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return database.ErrDuplicateUsername
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

// memFollows is an in-memory FollowRepository keyed by the ordered pair.
type memFollows struct {
	mu    sync.Mutex
	edges map[[2]int64]bool
	err   error
}

func newMemFollows() *memFollows {
	return &memFollows{edges: map[[2]int64]bool{}}
}

func (m *memFollows) Create(_ context.Context, follower, following int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if follower == following {
		return false, database.ErrSelfFollow
	}
	key := [2]int64{follower, following}
	if m.edges[key] {
		return false, nil
	}
	m.edges[key] = true
	return true, nil
}

func (m *memFollows) Delete(_ context.Context, follower, following int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	key := [2]int64{follower, following}
	existed := m.edges[key]
	delete(m.edges, key)
	return existed, nil
}

func (m *memFollows) Exists(_ context.Context, follower, following int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edges[[2]int64{follower, following}], m.err
}

func (m *memFollows) count(match func(k [2]int64) bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for k := range m.edges {
		if match(k) {
			n++
		}
	}
	return n, nil
}

func (m *memFollows) CountFollowers(_ context.Context, userID int64) (int64, error) {
	return m.count(func(k [2]int64) bool { return k[1] == userID })
}

func (m *memFollows) CountFollowing(_ context.Context, userID int64) (int64, error) {
	return m.count(func(k [2]int64) bool { return k[0] == userID })
}

// memFiles is an in-memory FileStorage.
type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemFiles() *memFiles {
	return &memFiles{objects: map[string][]byte{}}
}

func (m *memFiles) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memFiles) Open(_ context.Context, key string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
}

func (m *memFiles) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type testEnv struct {
	users   *memUsers
	follows *memFollows
	files   *memFiles
	tokens  *auth.TokenService
	auth    *AuthService
	social  *SocialService
	redis   *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := discardLogger()

	hasher, err := auth.NewHasher(auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	require.NoError(t, err)
	tokens, err := auth.NewTokenService("test-secret")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb, err := redis.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	env := &testEnv{
		users:   newMemUsers(),
		follows: newMemFollows(),
		files:   newMemFiles(),
		tokens:  tokens,
		redis:   mr,
	}
	env.auth = NewAuthService(env.users, hasher, tokens, NewImageStore(env.files, log), log)
	env.social = NewSocialService(env.users, env.follows, env.auth, rdb, log)
	return env
}

func (e *testEnv) register(t *testing.T, username string) *AuthResult {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return res
}

func pngUpload(name string) *ImageUpload {
	body := "\x89PNG fake image bytes"
	return &ImageUpload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Reader:      strings.NewReader(body),
	}
}
