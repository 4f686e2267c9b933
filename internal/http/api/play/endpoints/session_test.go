package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/loopboard/internal/assign"
	"github.com/Nixie-Tech-LLC/loopboard/internal/auth"
	"github.com/Nixie-Tech-LLC/loopboard/internal/client"
	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api"
	authendpoints "github.com/Nixie-Tech-LLC/loopboard/internal/http/api/auth/endpoints"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/playback"
	"github.com/Nixie-Tech-LLC/loopboard/internal/presence"
	redisclient "github.com/Nixie-Tech-LLC/loopboard/internal/redis"
)

const secret = "test-secret"

type testEnv struct {
	router   *gin.Engine
	store    *db.MemoryStore
	presence *presence.Service
	engine   *assign.Engine
	mr       *miniredis.Miniredis
	etags    *redisclient.ETagCache
	user     model.UserAccount
	token    string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	return setupWith(t, nil)
}

// setupWith lets wrap decorate the store the poll endpoint reads from.
func setupWith(t *testing.T, wrap func(*db.MemoryStore, *presence.Service) db.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	etags := redisclient.NewETagCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	store := db.NewMemoryStore()
	authn := auth.NewAuthenticator(store)
	pres := presence.NewService(store, etags)

	hash, err := auth.HashPassword("lobby#pass")
	require.NoError(t, err)
	user, err := store.CreateUser(ctx, "lobby", hash, nil)
	require.NoError(t, err)
	require.NoError(t, pres.MarkPlaying(ctx, user.ID))
	token, err := auth.GenerateJWT(model.UserIdentity(user), secret)
	require.NoError(t, err)

	var pollStore db.Store = store
	if wrap != nil {
		pollStore = wrap(store, pres)
	}

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/auth"},
		authendpoints.AuthPublicModule(secret, authn, pres))
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/auth", Auth: true, SecretKey: secret, Resolver: authn},
		authendpoints.AuthSessionModule(secret, authn, pres))
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/play", Auth: true, SecretKey: secret, Resolver: auth.ClaimsResolver{}, Role: model.RoleUser,
	}, PlayModule(pollStore, etags))

	return &testEnv{
		router:   r,
		store:    store,
		presence: pres,
		engine:   assign.NewEngine(store, etags),
		mr:       mr,
		etags:    etags,
		user:     user,
		token:    token,
	}
}

func (e *testEnv) poll(token, etag string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/play/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) assign(t *testing.T, target assign.Target, items ...model.MediaRef) {
	t.Helper()
	sel := assign.NewSelection()
	for _, it := range items {
		sel.Toggle(it)
	}
	_, err := e.engine.Commit(context.Background(), target, sel)
	require.NoError(t, err)
}

func snapshotOf(t *testing.T, w *httptest.ResponseRecorder) model.Snapshot {
	t.Helper()
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap), w.Body.String())
	return snap
}

var promo = model.MediaRef{Name: "Promo", Kind: model.KindImage, URL: "https://cdn.example.com/promo.png"}

func TestSessionReturnsSnapshot(t *testing.T) {
	env := setup(t)

	w := env.poll(env.token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := snapshotOf(t, w)
	assert.Equal(t, model.StatusPlaying, snap.Status)
	assert.NotNil(t, snap.MediaPlaying)
	assert.Empty(t, snap.MediaPlaying)
	assert.JSONEq(t, `{"status":"playing","media_playing":[]}`, w.Body.String())

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.True(t, strings.HasPrefix(etag, `"`))
	assert.Equal(t, etagFor(w.Body.Bytes()), etag)
	assert.True(t, env.mr.Exists("user:"+env.user.ID+":etag"))
}

func TestSessionNotModified(t *testing.T) {
	env := setup(t)
	etag := env.poll(env.token, "").Header().Get("ETag")

	w := env.poll(env.token, etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())
	assert.Equal(t, etag, w.Header().Get("ETag"))

	// a cold cache still honours a matching tag
	env.mr.FlushAll()
	w = env.poll(env.token, etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestSessionSeesAssignmentAndDeactivate(t *testing.T) {
	env := setup(t)
	etag := env.poll(env.token, "").Header().Get("ETag")

	env.assign(t, assign.User(env.user.ID), promo)
	assert.False(t, env.mr.Exists("user:"+env.user.ID+":etag"))

	w := env.poll(env.token, etag)
	require.Equal(t, http.StatusOK, w.Code)
	snap := snapshotOf(t, w)
	require.Len(t, snap.MediaPlaying, 1)
	assert.Equal(t, promo, snap.MediaPlaying[0])
	etag = w.Header().Get("ETag")

	require.NoError(t, env.presence.Deactivate(context.Background(), env.user.ID))
	w = env.poll(env.token, etag)
	require.Equal(t, http.StatusOK, w.Code)
	snap = snapshotOf(t, w)
	assert.Equal(t, model.StatusDisconnect, snap.Status)
	assert.Len(t, snap.MediaPlaying, 1)
}

func TestSessionRejectsAdminsAndMissingAccounts(t *testing.T) {
	env := setup(t)

	adminToken, err := auth.GenerateJWT(model.Identity{AccountID: "a1", Username: "root", IsAdmin: true}, secret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, env.poll(adminToken, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.poll("garbage", "").Code)

	require.NoError(t, env.store.DeleteUser(context.Background(), env.user.ID))
	assert.Equal(t, http.StatusUnauthorized, env.poll(env.token, "").Code)
}

// writeDuringRead runs an admin write between the poll's record read and
// the moment it caches the tag.
type writeDuringRead struct {
	db.Store
	once  sync.Once
	write func()
}

func (w *writeDuringRead) GetUserByUsername(ctx context.Context, username string) (model.UserAccount, error) {
	u, err := w.Store.GetUserByUsername(ctx, username)
	w.once.Do(w.write)
	return u, err
}

func TestSessionDeactivateDuringReadIsNotHidden(t *testing.T) {
	var userID string
	env := setupWith(t, func(mem *db.MemoryStore, pres *presence.Service) db.Store {
		return &writeDuringRead{Store: mem, write: func() {
			require.NoError(t, pres.Deactivate(context.Background(), userID))
		}}
	})
	userID = env.user.ID

	first := env.poll(env.token, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, model.StatusPlaying, snapshotOf(t, first).Status)
	assert.False(t, env.mr.Exists("user:"+userID+":etag"))

	w := env.poll(env.token, first.Header().Get("ETag"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusDisconnect, snapshotOf(t, w).Status)

	w = env.poll(env.token, w.Header().Get("ETag"))
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestSessionRecreatedUsernameIsRejected(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	require.NoError(t, env.store.DeleteUser(ctx, env.user.ID))
	_, err := env.store.CreateUser(ctx, "lobby", "hash", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, env.poll(env.token, "").Code)
}

type renderFunc func(playback.State)

func (f renderFunc) Render(st playback.State) { f(st) }

// A display logs in, is handed a playlist, and goes dark when deactivated.
func TestDisplayLifecycle(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	require.NoError(t, env.presence.Deactivate(ctx, env.user.ID))

	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	c := client.New(srv.URL)
	identity, err := c.Login(ctx, "lobby", "lobby#pass")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlaying, identity.Status)

	player := playback.NewPlayer(playback.FetchFunc(c.Fetch), renderFunc(func(playback.State) {}),
		playback.WithPollInterval(20*time.Millisecond), playback.WithDwell(time.Hour))

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- player.Run(runCtx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	phase := func(want playback.Phase) func() bool {
		return func() bool { return player.Session().State().Phase == want }
	}

	require.Eventually(t, phase(playback.Empty), 2*time.Second, 10*time.Millisecond)

	env.assign(t, assign.All, promo)
	require.Eventually(t, phase(playback.Presenting), 2*time.Second, 10*time.Millisecond)
	cur, ok := player.Session().State().Current()
	require.True(t, ok)
	assert.Equal(t, promo, cur)

	require.NoError(t, env.presence.Deactivate(ctx, env.user.ID))
	require.Eventually(t, phase(playback.Disconnected), 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Logout(ctx))
	u, err := env.store.GetUserByID(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDisconnect, u.Status)
}

func TestDisplayDropsPlaylistWhenAccountDeleted(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.assign(t, assign.User(env.user.ID), promo)

	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	c := client.New(srv.URL)
	_, err := c.Login(ctx, "lobby", "lobby#pass")
	require.NoError(t, err)

	player := playback.NewPlayer(playback.FetchFunc(c.Fetch), renderFunc(func(playback.State) {}),
		playback.WithPollInterval(20*time.Millisecond), playback.WithDwell(time.Hour))
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- player.Run(runCtx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		return player.Session().State().Phase == playback.Presenting
	}, 2*time.Second, 10*time.Millisecond)

	// as the admin delete endpoint does
	require.NoError(t, env.store.DeleteUser(ctx, env.user.ID))
	env.etags.Invalidate(ctx, env.user.ID)
	require.Eventually(t, func() bool {
		st := player.Session().State()
		return st.Phase == playback.Empty && len(st.Playlist) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
