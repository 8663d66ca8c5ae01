package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pokedex-backend/internal/infrastructure/observability"
	"pokedex-backend/internal/repository/mocks"
	"pokedex-backend/internal/service/pokemon"
	"pokedex-backend/internal/service/seed"
	"pokedex-backend/internal/testutil"
	"pokedex-backend/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticFetcher struct {
	results []seed.PokeResult
	err     error
}

func (f staticFetcher) FetchPage(context.Context) ([]seed.PokeResult, error) {
	return f.results, f.err
}

type testServer struct {
	handler http.Handler
	repo    *mocks.MockRepository
}

func newTestServer(t *testing.T, fetcher seed.Fetcher) *testServer {
	t.Helper()
	repo := mocks.NewMockRepository()
	collector := observability.NewCollector("test")
	logger := zap.NewNop()
	if fetcher == nil {
		fetcher = staticFetcher{}
	}

	router := NewRouter(RouterDeps{
		PokemonService: pokemon.NewService(repo, nil, collector, logger),
		SeedService:    seed.NewService(repo, fetcher, nil, collector, logger),
		Collector:      collector,
		Logger:         logger,
		ServiceName:    "pokedex-test",
	})
	return &testServer{handler: router, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCreatePokemon(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("Should create and lower-case the name", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v2/pokemon", `{"name":"Pikachu","no":25}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		got := decodeBody[api.PokemonResponse](t, w)
		assert.Equal(t, "pikachu", got.Name)
		assert.Equal(t, 25, got.No)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("Should reject a duplicate name as bad request", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v2/pokemon", `{"name":"PIKACHU","no":26}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, `Pokemon exists in db {"name":"pikachu"}`, decodeBody[api.ErrorResponse](t, w).Error)
	})

	t.Run("Should reject a duplicate number", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v2/pokemon", `{"name":"raichu","no":25}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, `Pokemon exists in db {"no":25}`, decodeBody[api.ErrorResponse](t, w).Error)
	})

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing name", `{"no":1}`, "name is required"},
		{"zero number", `{"name":"x","no":0}`, "no is required"},
		{"negative number", `{"name":"x","no":-4}`, "no must not be less than 1"},
		{"bad image url", `{"name":"x","no":1,"imageUrl":"not a url"}`, "imageUrl must be a valid URL"},
		{"malformed body", `{"name":`, "invalid request body"},
		{"number as string", `{"name":"x","no":"one"}`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run("Should reject "+tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/api/v2/pokemon", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody[api.ErrorResponse](t, w).Error, tt.message)
		})
	}
}

func TestCreateManyPokemon(t *testing.T) {
	t.Run("Should insert every element", func(t *testing.T) {
		srv := newTestServer(t, nil)
		w := srv.do(t, http.MethodPost, "/api/v2/pokemon/bulk", `[{"name":"Bulbasaur","no":1},{"name":"Ivysaur","no":2}]`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		got := decodeBody[[]api.PokemonResponse](t, w)
		require.Len(t, got, 2)
		assert.Equal(t, "bulbasaur", got[0].Name)
		assert.Equal(t, "ivysaur", got[1].Name)
		assert.Equal(t, 2, srv.repo.Len())
	})

	t.Run("Should name the failing element", func(t *testing.T) {
		srv := newTestServer(t, nil)
		w := srv.do(t, http.MethodPost, "/api/v2/pokemon/bulk", `[{"name":"a","no":1},{"name":"","no":2}]`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody[api.ErrorResponse](t, w).Error, "[1].name")
		assert.Equal(t, 0, srv.repo.Len())
	})

	t.Run("Should reject an empty array", func(t *testing.T) {
		srv := newTestServer(t, nil)
		w := srv.do(t, http.MethodPost, "/api/v2/pokemon/bulk", `[]`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should keep records stored before a duplicate", func(t *testing.T) {
		srv := newTestServer(t, nil)
		w := srv.do(t, http.MethodPost, "/api/v2/pokemon/bulk", `[{"name":"a","no":1},{"name":"b","no":2},{"name":"A","no":3}]`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, `Pokemon exists in db {"name":"a"}`, decodeBody[api.ErrorResponse](t, w).Error)
		assert.Equal(t, 2, srv.repo.Len())
	})
}

func TestListPokemon(t *testing.T) {
	srv := newTestServer(t, nil)
	gen := testutil.NewTestDataGenerator(7)
	for _, p := range gen.Pokemons(15) {
		body, err := json.Marshal(api.CreatePokemonRequest{Name: p.Name, No: p.No})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v2/pokemon", string(body)).Code)
	}

	t.Run("Should default to ten records", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v2/pokemon", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody[[]api.PokemonResponse](t, w), 10)
	})

	t.Run("Should apply limit and offset", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v2/pokemon?limit=4&offset=12", "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decodeBody[[]api.PokemonResponse](t, w)
		require.Len(t, got, 3)
		assert.Equal(t, 13, got[0].No)
	})

	t.Run("Should return an empty array past the end", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v2/pokemon?offset=100", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	for _, query := range []string{"limit=abc", "offset=x", "limit=0", "offset=-1"} {
		t.Run("Should reject "+query, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, "/api/v2/pokemon?"+query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestFindUpdateDeletePokemon(t *testing.T) {
	srv := newTestServer(t, nil)
	created := decodeBody[api.PokemonResponse](t, srv.do(t, http.MethodPost, "/api/v2/pokemon", `{"name":"Pikachu","no":25}`))
	srv.do(t, http.MethodPost, "/api/v2/pokemon", `{"name":"25","no":99}`)

	t.Run("Should resolve by number before name", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v2/pokemon/25", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pikachu", decodeBody[api.PokemonResponse](t, w).Name)
	})

	t.Run("Should resolve by id and by name", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v2/pokemon/"+created.ID, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 25, decodeBody[api.PokemonResponse](t, w).No)

		w = srv.do(t, http.MethodGet, "/api/v2/pokemon/%20PIKACHU%20", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.ID, decodeBody[api.PokemonResponse](t, w).ID)
	})

	t.Run("Should return 404 for an unknown term", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v2/pokemon/missingno", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, `Pokemon with id, name or no "missingno" not found`, decodeBody[api.ErrorResponse](t, w).Error)
	})

	t.Run("Should patch and find by the new name", func(t *testing.T) {
		w := srv.do(t, http.MethodPatch, "/api/v2/pokemon/pikachu", `{"name":"Raichu"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "raichu", decodeBody[api.PokemonResponse](t, w).Name)

		w = srv.do(t, http.MethodGet, "/api/v2/pokemon/raichu", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.ID, decodeBody[api.PokemonResponse](t, w).ID)
	})

	t.Run("Should reject a patch onto a taken number", func(t *testing.T) {
		w := srv.do(t, http.MethodPatch, "/api/v2/pokemon/raichu", `{"no":99}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should validate patch fields", func(t *testing.T) {
		w := srv.do(t, http.MethodPatch, "/api/v2/pokemon/raichu", `{"no":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody[api.ErrorResponse](t, w).Error, "no must not be less than 1")
	})

	t.Run("Should delete only by exact id", func(t *testing.T) {
		w := srv.do(t, http.MethodDelete, "/api/v2/pokemon/raichu", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = srv.do(t, http.MethodDelete, "/api/v2/pokemon/"+created.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())

		w = srv.do(t, http.MethodGet, "/api/v2/pokemon/"+created.ID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 1, srv.repo.Len())
	})
}

func TestSeedEndpoint(t *testing.T) {
	t.Run("Should replace the store with the upstream page", func(t *testing.T) {
		fetcher := staticFetcher{results: []seed.PokeResult{
			{Name: "bulbasaur", URL: testutil.PokeAPIURL("https://pokeapi.co/api/v2", 1)},
			{Name: "ivysaur", URL: testutil.PokeAPIURL("https://pokeapi.co/api/v2", 2)},
		}}
		srv := newTestServer(t, fetcher)
		srv.do(t, http.MethodPost, "/api/v2/pokemon", `{"name":"stale","no":500}`)

		w := srv.do(t, http.MethodGet, "/api/v2/seed", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Seed Executed"}`, w.Body.String())
		assert.Equal(t, 2, srv.repo.Len())

		w = srv.do(t, http.MethodGet, "/api/v2/pokemon/2", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ivysaur", decodeBody[api.PokemonResponse](t, w).Name)
	})

	t.Run("Should hide upstream failures behind a generic message", func(t *testing.T) {
		srv := newTestServer(t, staticFetcher{err: errors.New("dial tcp: connection refused")})
		w := srv.do(t, http.MethodGet, "/api/v2/seed", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Can't create Pokemon - check server logs", decodeBody[api.ErrorResponse](t, w).Error)
	})

	t.Run("Should keep pokemon routes available after repeated seed failures", func(t *testing.T) {
		srv := newTestServer(t, staticFetcher{err: errors.New("dial tcp: connection refused")})
		require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v2/pokemon", `{"name":"pikachu","no":25}`).Code)

		for i := 0; i < 10; i++ {
			w := srv.do(t, http.MethodGet, "/api/v2/seed", "")
			require.Equal(t, http.StatusInternalServerError, w.Code, "attempt %d", i)
		}

		w := srv.do(t, http.MethodGet, "/api/v2/pokemon/25", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "pikachu", decodeBody[api.PokemonResponse](t, w).Name)

		w = srv.do(t, http.MethodGet, "/api/v2/pokemon", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decodeBody[[]api.PokemonResponse](t, w), 1)
	})
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("Health", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	})

	t.Run("Metrics", func(t *testing.T) {
		srv.do(t, http.MethodGet, "/api/v2/pokemon", "")
		w := srv.do(t, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "http_requests_total")
	})

	t.Run("Swagger", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/swagger", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		srv.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"openapi"`)
	})

	t.Run("Request ID is echoed", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/health", "")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestHandleServiceErrorUnclassified(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(zap.NewNop(), w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An internal error occurred"}`, w.Body.String())
}
