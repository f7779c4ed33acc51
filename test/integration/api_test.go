package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	config "github.com/flinkapp/flink/configs"
	"github.com/flinkapp/flink/internal/application/services"
	"github.com/flinkapp/flink/internal/core/domain/auth"
	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/flinkapp/flink/internal/core/domain/visibility"
	"github.com/flinkapp/flink/internal/infrastructure/cache"
	"github.com/flinkapp/flink/internal/infrastructure/httpserver"
	"github.com/flinkapp/flink/internal/infrastructure/repositories"
	"github.com/flinkapp/flink/test/mocks"
)

const jwtSecret = "integration-secret"

func strPtr(s string) *string { return &s }

// IntegrationTestSuite runs the whole HTTP stack in process against the
// in-memory store and cache.
type IntegrationTestSuite struct {
	suite.Suite
	server   *httptest.Server
	client   *http.Client
	mu       sync.Mutex
	profiles map[string]*profile.Profile
	store    *mocks.FakeConnectionRepository
	cache    *cache.MemoryCache

	bob, ada, grace uuid.UUID
}

func (s *IntegrationTestSuite) SetupTest() {
	s.bob, s.ada, s.grace = uuid.New(), uuid.New(), uuid.New()
	s.profiles = map[string]*profile.Profile{
		"bob":   {UserID: s.bob, Name: "Bob", Handle: "bob"},
		"ada":   {UserID: s.ada, Name: "Ada", Handle: "ada", Location: strPtr("London")},
		"grace": {UserID: s.grace, Name: "Grace", Handle: "grace", Private: true, Location: strPtr("Arlington"), Website: strPtr("https://grace.dev")},
	}
	store := &mocks.ProfileRepositoryMock{
		GetByHandleFn: func(ctx context.Context, handle string) (*profile.Profile, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if p, ok := s.profiles[strings.ToLower(handle)]; ok {
				cp := *p
				return &cp, nil
			}
			return nil, profile.ErrNotFound
		},
		GetByUserIDFn: func(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, p := range s.profiles {
				if p.UserID == userID {
					cp := *p
					return &cp, nil
				}
			}
			return nil, profile.ErrNotFound
		},
	}

	s.store = mocks.NewFakeConnectionRepository()
	s.cache = cache.NewMemoryCache(nil)
	profiles := repositories.NewCachingProfileRepository(store, s.cache, 5*time.Minute)
	connections := services.NewConnectionService(s.store, s.cache, services.DefaultConnectionCacheTTLs(), nil)

	srv := httpserver.NewServer(&httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"}, nil, httpserver.ServerDeps{
		ConnectionService: connections,
		VisibilityService: services.NewVisibilityService(visibility.ModePermissive, connections, profiles, nil),
		Profiles:          profiles,
		TokenVerifier:     services.NewTokenVerifier(&config.JWTConfig{Secret: jwtSecret, Audience: "authenticated"}),
	})
	s.server = httptest.NewServer(srv.Echo())
	s.client = &http.Client{Timeout: 5 * time.Second}
}

func (s *IntegrationTestSuite) TearDownTest() {
	s.server.Close()
	s.cache.Clear()
}

func (s *IntegrationTestSuite) token(userID uuid.UUID) string {
	claims := &auth.Claims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	s.Require().NoError(err)
	return signed
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (s *IntegrationTestSuite) call(method, path string, as uuid.UUID, body any, out any) (int, string) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if as != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+s.token(as))
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	if env.Error != nil {
		return resp.StatusCode, env.Error.Code
	}
	if out != nil {
		s.Require().NoError(json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode, ""
}

func (s *IntegrationTestSuite) status(as, other uuid.UUID) string {
	var st struct {
		Status string `json:"status"`
	}
	code, _ := s.call(http.MethodGet, "/api/v1/connections/status/"+other.String(), as, nil, &st)
	s.Require().Equal(http.StatusOK, code)
	return st.Status
}

func (s *IntegrationTestSuite) friendIDs(as uuid.UUID) []uuid.UUID {
	var list []*connection.ConnectionWithProfiles
	code, _ := s.call(http.MethodGet, "/api/v1/connections", as, nil, &list)
	s.Require().Equal(http.StatusOK, code)
	ids := make([]uuid.UUID, 0, len(list))
	for _, c := range list {
		if c.SenderID == as {
			ids = append(ids, c.ReceiverID)
		} else {
			ids = append(ids, c.SenderID)
		}
	}
	return ids
}

func (s *IntegrationTestSuite) TestPublicProfileBecomesFriendImmediately() {
	var created connection.Connection
	code, _ := s.call(http.MethodPost, "/api/v1/connections", s.bob, map[string]string{"receiver_id": s.ada.String()}, &created)
	s.Require().Equal(http.StatusCreated, code)
	s.Equal(connection.StatusAccepted, created.Status)

	s.Equal("accepted", s.status(s.bob, s.ada))
	s.Equal("accepted", s.status(s.ada, s.bob))
	s.Equal([]uuid.UUID{s.ada}, s.friendIDs(s.bob))
	s.Equal([]uuid.UUID{s.bob}, s.friendIDs(s.ada))

	code, errCode := s.call(http.MethodPost, "/api/v1/connections", s.ada, map[string]string{"receiver_id": s.bob.String()}, nil)
	s.Equal(http.StatusConflict, code)
	s.Equal("CONNECTION_EXISTS", errCode)
}

func (s *IntegrationTestSuite) TestPrivateProfileNeedsAccept() {
	// warm Grace's cached lists before the write
	s.Empty(s.friendIDs(s.grace))

	var created connection.Connection
	code, _ := s.call(http.MethodPost, "/api/v1/connections", s.bob, map[string]string{"receiver_id": s.grace.String()}, &created)
	s.Require().Equal(http.StatusCreated, code)
	s.Equal(connection.StatusPending, created.Status)

	var pending []*connection.ConnectionWithProfiles
	code, _ = s.call(http.MethodGet, "/api/v1/connections/pending", s.grace, nil, &pending)
	s.Require().Equal(http.StatusOK, code)
	s.Require().Len(pending, 1)

	var view struct {
		Profile    profile.PublicProfile `json:"profile"`
		Visibility visibility.Decision   `json:"visibility"`
	}
	code, _ = s.call(http.MethodGet, "/api/v1/profiles/grace", s.bob, nil, &view)
	s.Require().Equal(http.StatusOK, code)
	s.True(view.Visibility.CanView)
	s.False(view.Visibility.CanViewExtendedFields)
	s.Nil(view.Profile.Location)

	code, errCode := s.call(http.MethodPut, "/api/v1/connections/"+created.ID.String()+"/accept", s.bob, nil, nil)
	s.Equal(http.StatusForbidden, code)
	s.Equal("NOT_AUTHORIZED", errCode)

	code, _ = s.call(http.MethodPut, "/api/v1/connections/"+created.ID.String()+"/accept", s.grace, nil, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal([]uuid.UUID{s.bob}, s.friendIDs(s.grace))

	code, _ = s.call(http.MethodGet, "/api/v1/profiles/grace", s.bob, nil, &view)
	s.Require().Equal(http.StatusOK, code)
	s.True(view.Visibility.CanViewExtendedFields)
	s.Equal("Arlington", *view.Profile.Location)

	code, _ = s.call(http.MethodDelete, "/api/v1/connections/"+created.ID.String(), s.bob, nil, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("none", s.status(s.grace, s.bob))
	s.Empty(s.friendIDs(s.grace))
}

func (s *IntegrationTestSuite) setPrivate(handle string, private bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[handle].Private = private
}

func (s *IntegrationTestSuite) TestGoingPrivateAppliesToTheNextRequest() {
	var view struct {
		Visibility visibility.Decision `json:"visibility"`
	}
	code, _ := s.call(http.MethodGet, "/api/v1/profiles/ada", s.grace, nil, &view)
	s.Require().Equal(http.StatusOK, code)
	s.True(view.Visibility.CanViewExtendedFields)

	s.setPrivate("ada", true)

	code, _ = s.call(http.MethodGet, "/api/v1/profiles/ada", s.grace, nil, &view)
	s.Require().Equal(http.StatusOK, code)
	s.False(view.Visibility.CanViewExtendedFields)

	var created connection.Connection
	code, _ = s.call(http.MethodPost, "/api/v1/connections", s.bob, map[string]string{"receiver_id": s.ada.String()}, &created)
	s.Require().Equal(http.StatusCreated, code)
	s.Equal(connection.StatusPending, created.Status)
}

func (s *IntegrationTestSuite) TestRejectedRequestBlocksResend() {
	var created connection.Connection
	code, _ := s.call(http.MethodPost, "/api/v1/connections", s.ada, map[string]string{"receiver_id": s.grace.String()}, &created)
	s.Require().Equal(http.StatusCreated, code)

	code, _ = s.call(http.MethodPut, "/api/v1/connections/"+created.ID.String()+"/reject", s.grace, nil, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("rejected", s.status(s.ada, s.grace))

	code, errCode := s.call(http.MethodPut, "/api/v1/connections/"+created.ID.String()+"/accept", s.grace, nil, nil)
	s.Equal(http.StatusConflict, code)
	s.Equal("INVALID_TRANSITION", errCode)

	code, errCode = s.call(http.MethodPost, "/api/v1/connections", s.ada, map[string]string{"receiver_id": s.grace.String()}, nil)
	s.Equal(http.StatusConflict, code)
	s.Equal("CONNECTION_EXISTS", errCode)
}

func (s *IntegrationTestSuite) TestHealthCheck() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&health))
	s.Equal("healthy", health["status"])
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
