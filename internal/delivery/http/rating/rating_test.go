package http_rating

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	http_admin_middleware "github.com/porchrate/core/internal/delivery/http/middleware/admin"
	"github.com/porchrate/core/internal/infra/memory"
	"github.com/porchrate/core/internal/model"
	storage_house "github.com/porchrate/core/internal/storage/house"
	storage_rating "github.com/porchrate/core/internal/storage/rating"
	usecase_house "github.com/porchrate/core/internal/usecase/house"
	usecase_rating "github.com/porchrate/core/internal/usecase/rating"
)

const adminCode = "test-admin-code"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := memory.New()
	houses := usecase_house.New(storage_house.New(store), 50)
	ratings := usecase_rating.New(storage_rating.New(store, memory.NewDupIndex()), houses)

	controller := New(ratings, http_admin_middleware.New(adminCode))

	router := gin.New()
	controller.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func submitBody(fingerprint string) map[string]any {
	return map[string]any{
		"latitude":        40.7128,
		"longitude":       -74.0060,
		"rating1":         4,
		"rating2":         5,
		"address":         "13 Elm Street",
		"userFingerprint": fingerprint,
		"theme":           "halloween",
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmit(t *testing.T) {
	t.Parallel()
	router := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", submitBody("fp-1"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SubmitResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Rating.ID)
	assert.NotEmpty(t, resp.Rating.HouseID)
	assert.Equal(t, model.ThemeHalloween, resp.Rating.Theme)

	t.Run("Should reject a duplicate with 409", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", submitBody("fp-1"), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "already rated")
	})

	t.Run("Should accept another fingerprint", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", submitBody("fp-2"), nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()
	router := newRouter()

	body := submitBody("fp-1")
	delete(body, "address")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "address")
}

func TestSubmitHalfMissingCoordinates(t *testing.T) {
	t.Parallel()
	router := newRouter()

	testCases := []struct {
		name   string
		mutate func(body map[string]any)
	}{
		{
			name:   "Should reject latitude without longitude",
			mutate: func(body map[string]any) { delete(body, "longitude") },
		},
		{
			name:   "Should reject longitude without latitude",
			mutate: func(body map[string]any) { delete(body, "latitude") },
		},
		{
			name: "Should reject legacy lat without lng",
			mutate: func(body map[string]any) {
				delete(body, "latitude")
				delete(body, "longitude")
				body["lat"] = 40.7128
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := submitBody("fp-half")
			tc.mutate(body)

			rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "location")
		})
	}

	t.Run("Should accept a mixed-generation pair", func(t *testing.T) {
		body := submitBody("fp-mixed")
		delete(body, "longitude")
		body["lng"] = -74.0060

		rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", body, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestSubmitLegacyShape(t *testing.T) {
	t.Parallel()
	router := newRouter()

	body := map[string]any{
		"lat":             40.7128,
		"lng":             -74.0060,
		"candy":           7,
		"decorations":     10,
		"address":         "13 Elm Street",
		"userFingerprint": "fp-legacy",
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SubmitResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Rating.Rating1)
	assert.Equal(t, 5, resp.Rating.Rating2)
	assert.Equal(t, model.DefaultTheme, resp.Rating.Theme)
}

func TestList(t *testing.T) {
	t.Parallel()
	router := newRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/ratings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Ratings)
	assert.Empty(t, resp.Ratings)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/ratings", submitBody("fp-1"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("Should list the submitted rating", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/ratings?theme=halloween", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponseDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Ratings, 1)
	})

	t.Run("Should keep themes separate", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/ratings?theme=christmas", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponseDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Ratings)
	})
}

func TestMine(t *testing.T) {
	t.Parallel()
	router := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", submitBody("fp-1"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/ratings", submitBody("fp-2"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/ratings/mine?fingerprint=fp-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MineResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Ratings, 1)
	assert.Equal(t, "fp-1", resp.Ratings[0].UserFingerprint)
	assert.Len(t, resp.RatedHouseIDs, 1)

	t.Run("Should require a fingerprint", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/ratings/mine", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()
	router := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ratings", submitBody("fp-1"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SubmitResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	admin := map[string]string{"X-admin-code": adminCode}

	t.Run("Should reject a missing admin code", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/v1/ratings/"+resp.Rating.ID, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Should reject a wrong admin code", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/v1/ratings/"+resp.Rating.ID, nil,
			map[string]string{"X-admin-code": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Should delete with the admin code", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/v1/ratings/"+resp.Rating.ID, nil, admin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Should 404 on the second delete", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/v1/ratings/"+resp.Rating.ID, nil, admin)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
