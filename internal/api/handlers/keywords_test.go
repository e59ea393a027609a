package handlers_test

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmfallon/beepbeep/internal/api/handlers"
)

func newKeywordsAPI(t *testing.T, ms *memStore) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	handlers.RegisterKeywordRoutes(api, handlers.NewKeywordsHandler(ms))
	return api
}

func TestKeywordsHandler_ListEmpty(t *testing.T) {
	t.Parallel()

	api := newKeywordsAPI(t, newMemStore())

	resp := api.Get("/api/v1/keywords")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"keywords":[]`)
}

func TestKeywordsHandler_AddAndList(t *testing.T) {
	t.Parallel()

	ms := newMemStore()
	api := newKeywordsAPI(t, ms)

	resp := api.Post("/api/v1/keywords", map[string]any{"keyword": "Bootleg"})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), "bootleg")

	resp = api.Post("/api/v1/keywords", map[string]any{"keyword": "promo"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = api.Get("/api/v1/keywords")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"keywords":["bootleg","promo"]`)
}

func TestKeywordsHandler_Add_RejectsBlank(t *testing.T) {
	t.Parallel()

	api := newKeywordsAPI(t, newMemStore())

	resp := api.Post("/api/v1/keywords", map[string]any{"keyword": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post("/api/v1/keywords", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestKeywordsHandler_Remove(t *testing.T) {
	t.Parallel()

	ms := newMemStore()
	ms.keywords["bootleg"] = true
	ms.keywords["promo"] = true

	api := newKeywordsAPI(t, ms)

	resp := api.Delete("/api/v1/keywords/bootleg")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"keywords":["promo"]`)
	assert.NotContains(t, ms.keywords, "bootleg")
}
