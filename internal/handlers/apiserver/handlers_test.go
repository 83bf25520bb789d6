package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"matchgraph/internal/auth"
	"matchgraph/internal/config"
	"matchgraph/internal/kafka"
	"matchgraph/internal/middleware"
	"matchgraph/internal/models"
	"matchgraph/internal/services"
	"matchgraph/internal/storage"
)

var testAuthConfig = config.AuthConfig{JWTSecretKey: "handler-secret", JWTExpiry: time.Hour}

type memoryBlacklist map[string]time.Time

func (m memoryBlacklist) Add(_ context.Context, jti string, exp time.Time) error {
	m[jti] = exp
	return nil
}

func (m memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m[jti]
	return ok, nil
}

type testServer struct {
	db     *gorm.DB
	router http.Handler
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := storage.InitDB(config.DatabaseConfig{Type: "sqlite", DBName: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	producer := kafka.NewNoopProducer()
	kafkaCfg := config.KafkaConfig{EventsTopic: "test-events"}
	blacklist := memoryBlacklist{}

	pagination := config.PaginationConfig{DefaultLimit: 100, MaxLimit: 500}
	userService := services.NewUserService(storage.NewGormUserRepository(db), pagination)
	interactionService := services.NewInteractionService(db, producer, kafkaCfg, pagination)
	ratingService := services.NewRatingService(db, producer, kafkaCfg)
	endorsementService := services.NewEndorsementService(db, producer, kafkaCfg)

	router := NewRouter(Handlers{
		Interactions: NewInteractionHandler(interactionService, userService),
		Ratings:      NewRatingHandler(ratingService, interactionService, userService),
		Endorsements: NewEndorsementHandler(endorsementService, userService),
		Users:        NewUserHandler(userService),
		Auth:         NewAuthHandler(blacklist),
		Health:       NewHealthHandler(db, "test"),
	}, middleware.AuthMiddleware(testAuthConfig, blacklist))

	return &testServer{db: db, router: router}
}

type testUser struct {
	*models.User
	token string
}

func (s *testServer) createUser(t *testing.T, name string, superuser bool) testUser {
	t.Helper()

	fullName := "User " + name
	user := &models.User{Email: name + "@example.com", FullName: &fullName, IsActive: true, IsSuperuser: superuser}
	require.NoError(t, storage.NewGormUserRepository(s.db).Create(context.Background(), user))

	token, err := auth.GenerateToken(user.ID, testAuthConfig)
	require.NoError(t, err)
	return testUser{User: user, token: token}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestAPIRequiresToken(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/endorsements/endorsed-by-me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInteractionEndpoints(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser(t, "alice", false)
	bob := s.createUser(t, "bob", false)
	carol := s.createUser(t, "carol", false)

	rec := s.do(t, http.MethodPost, "/api/v1/interactions", alice.token, map[string]interface{}{"target_id": bob.ID, "message": "hi"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var interaction models.Interaction
	decode(t, rec, &interaction)
	assert.Equal(t, models.InteractionStatusPending, interaction.Status)

	t.Run("duplicate pending", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/interactions", alice.token, map[string]interface{}{"target_id": bob.ID})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("self", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/interactions", alice.token, map[string]interface{}{"target_id": alice.ID})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown target", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/interactions", alice.token, map[string]interface{}{"target_id": uuid.New()})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/interactions", alice.token, "not an object")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	respondPath := "/api/v1/interactions/" + interaction.ID.String() + "/respond"

	t.Run("initiator cannot respond", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, respondPath+"?accept=true", alice.token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("accept flag required", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, respondPath+"?accept=maybe", bob.token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown interaction", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/interactions/"+uuid.NewString()+"/respond?accept=true", bob.token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	rec = s.do(t, http.MethodPost, respondPath+"?accept=true", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var msg MessageResponse
	decode(t, rec, &msg)
	assert.Equal(t, "Interaction accepted", msg.Message)

	rec = s.do(t, http.MethodPost, respondPath+"?accept=false", bob.token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	t.Run("list own interactions", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/users/"+alice.ID.String()+"/interactions?role=initiator", alice.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []models.Interaction
		decode(t, rec, &list)
		require.Len(t, list, 1)
		assert.Equal(t, models.InteractionStatusAccepted, list[0].Status)
	})

	t.Run("list other user's interactions", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/users/"+alice.ID.String()+"/interactions", carol.token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		admin := s.createUser(t, "admin", true)
		rec = s.do(t, http.MethodGet, "/api/v1/users/"+alice.ID.String()+"/interactions", admin.token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("list with bad arguments", func(t *testing.T) {
		base := "/api/v1/users/" + alice.ID.String() + "/interactions"
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, base+"?role=owner", alice.token, nil).Code)
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, base+"?skip=-1", alice.token, nil).Code)
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, base+"?limit=ten", alice.token, nil).Code)
	})
}

func TestRatingEndpoints(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser(t, "alice", false)
	bob := s.createUser(t, "bob", false)
	carol := s.createUser(t, "carol", false)

	rec := s.do(t, http.MethodPost, "/api/v1/interactions", alice.token, map[string]interface{}{"target_id": bob.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var interaction models.Interaction
	decode(t, rec, &interaction)
	ratingsPath := "/api/v1/interactions/" + interaction.ID.String() + "/ratings"

	rec = s.do(t, http.MethodPost, ratingsPath, alice.token, map[string]interface{}{"rating": 4})
	assert.Equal(t, http.StatusConflict, rec.Code, "pending interactions cannot be rated")

	rec = s.do(t, http.MethodPost, "/api/v1/interactions/"+interaction.ID.String()+"/respond?accept=true", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, ratingsPath, alice.token, map[string]interface{}{"rating": 4, "comment": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, ratingsPath, alice.token, map[string]interface{}{"rating": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, ratingsPath, bob.token, map[string]interface{}{"rating": 9}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, ratingsPath, bob.token, map[string]interface{}{}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, ratingsPath, carol.token, map[string]interface{}{"rating": 1}).Code)

	rec = s.do(t, http.MethodPost, ratingsPath, bob.token, map[string]interface{}{"rating": -2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, ratingsPath, alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ratings []models.RatingWithRater
	decode(t, rec, &ratings)
	require.Len(t, ratings, 2)
	assert.Equal(t, 4, ratings[0].Score)
	assert.Equal(t, "alice@example.com", ratings[0].RaterEmail)
	assert.Equal(t, "bob@example.com", ratings[1].RaterEmail)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, ratingsPath, carol.token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/interactions/"+uuid.NewString()+"/ratings", alice.token, nil).Code)
}

func TestEndorsementEndpoints(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser(t, "alice", false)
	bob := s.createUser(t, "bob", false)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/endorsements", alice.token,
		map[string]interface{}{"endorsed_id": alice.ID, "confidence": 0.5}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/v1/endorsements", alice.token,
		map[string]interface{}{"endorsed_id": uuid.New(), "confidence": 0.5}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/endorsements", alice.token,
		map[string]interface{}{"endorsed_id": bob.ID, "confidence": 1.5}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/endorsements", alice.token,
		map[string]interface{}{"endorsed_id": bob.ID}).Code)

	rec := s.do(t, http.MethodPost, "/api/v1/endorsements", alice.token, map[string]interface{}{"endorsed_id": bob.ID, "confidence": 0.75})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first models.Endorsement
	decode(t, rec, &first)

	rec = s.do(t, http.MethodPost, "/api/v1/endorsements", alice.token, map[string]interface{}{"endorsed_id": bob.ID, "confidence": 0.95})
	require.Equal(t, http.StatusOK, rec.Code)
	var second models.Endorsement
	decode(t, rec, &second)
	assert.Equal(t, first.ID, second.ID)

	rec = s.do(t, http.MethodGet, "/api/v1/endorsements/endorsed-by-me", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.EndorsementWithUser
	decode(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.InDelta(t, 0.95, mine[0].Confidence, 1e-9)
	assert.Equal(t, "bob@example.com", mine[0].UserEmail)

	rec = s.do(t, http.MethodGet, "/api/v1/endorsements/endorsing-me", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var received []models.EndorsementWithUser
	decode(t, rec, &received)
	require.Len(t, received, 1)
	assert.Equal(t, "alice@example.com", received[0].UserEmail)

	rec = s.do(t, http.MethodGet, "/api/v1/endorsements/"+alice.ID.String()+"/endorsed-by", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var byAlice []models.EndorsementWithUser
	decode(t, rec, &byAlice)
	assert.Len(t, byAlice, 1)

	rec = s.do(t, http.MethodGet, "/api/v1/endorsements/"+alice.ID.String()+"/endorsers", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ofAlice []models.EndorsementWithUser
	decode(t, rec, &ofAlice)
	assert.Empty(t, ofAlice)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/endorsements/"+uuid.NewString()+"/endorsers", bob.token, nil).Code)
}

func TestSearchUsers(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser(t, "alice", false)
	s.createUser(t, "alicia", false)
	s.createUser(t, "bob", false)

	rec := s.do(t, http.MethodGet, "/api/v1/users/search?q=ALI", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var results []UserSearchResult
	decode(t, rec, &results)
	assert.Len(t, results, 2)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/users/search?q=", alice.token, nil).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser(t, "alice", false)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/logout", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/endorsements/endorsed-by-me", alice.token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
