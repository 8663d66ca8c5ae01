package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pokedex-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestHelpers(t *testing.T) {
	t.Run("ErrorBody", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, http.StatusNotFound, "nope")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
	})

	t.Run("SuccessWithoutBody", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Success(rec, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("EmptyListIsArray", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Success(rec, http.StatusOK, NewPokemonListResponse(nil))
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestUpdateRequestToPatch(t *testing.T) {
	var req UpdatePokemonRequest
	require.NoError(t, json.Unmarshal([]byte(`{"no": 7}`), &req))

	patch := req.ToPatch()
	assert.Nil(t, patch.Name)
	require.NotNil(t, patch.No)
	assert.Equal(t, 7, *patch.No)

	merged := patch.Apply(domain.Pokemon{Name: "squirtle", No: 1})
	assert.Equal(t, "squirtle", merged.Name)
	assert.Equal(t, 7, merged.No)
}

func TestSwaggerHandler(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SwaggerHandler()(rec, httptest.NewRequest(http.MethodGet, "/api/swagger", nil))
		assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")
	})

	t.Run("JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/swagger", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		SwaggerHandler()(rec, req)

		var spec map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
		paths := spec["paths"].(map[string]any)
		assert.Contains(t, paths, "/pokemon/{term}")
		assert.Contains(t, paths, "/seed")
	})

	t.Run("Registered with swag", func(t *testing.T) {
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		require.NoError(t, err)
		assert.Contains(t, doc, `"openapi":"3.0.3"`)
	})
}
