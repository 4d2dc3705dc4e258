package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"petmarket/catalog/internal/client"
	"petmarket/catalog/internal/config"
	"petmarket/catalog/internal/directory"
	"petmarket/catalog/internal/domain"
	"petmarket/catalog/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	breeds []domain.Breed
	err    error
}

func (p *fakeProvider) ListBreeds(ctx context.Context) ([]domain.Breed, error) {
	return p.breeds, p.err
}

func (p *fakeProvider) GetBreedByCode(ctx context.Context, code string) (*domain.Breed, error) {
	if p.err != nil {
		return nil, p.err
	}
	for _, breed := range p.breeds {
		if breed.Code == code {
			return &breed, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", service.ErrBreedNotFound, code)
}

var testBreeds = []domain.Breed{
	{Code: "a1", DisplayName: "Labrador", CategoryCode: "dog", CategoryDisplayName: "Dogs"},
	{Code: "a2", DisplayName: "Persian", CategoryCode: "cat", CategoryDisplayName: "Cats"},
}

func TestHandler_GetBreedList(t *testing.T) {
	h := NewHandler(&fakeProvider{breeds: testBreeds})

	req := httptest.NewRequest(http.MethodGet, client.BreedListPath, nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var got []domain.Breed
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, testBreeds, got)
}

func TestHandler_GetBreedList_Error(t *testing.T) {
	h := NewHandler(&fakeProvider{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, client.BreedListPath, nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body.Error)
}

func TestHandler_GetBreed(t *testing.T) {
	h := NewHandler(&fakeProvider{breeds: testBreeds})

	req := httptest.NewRequest(http.MethodGet, client.BreedPath+"a2", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got domain.Breed
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, testBreeds[1], got)
}

func TestHandler_GetBreed_NotFound(t *testing.T) {
	h := NewHandler(&fakeProvider{breeds: testBreeds})

	req := httptest.NewRequest(http.MethodGet, client.BreedPath+"zz", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "breed not found", body.Message)
}

func TestHandler_RequestIDIsEchoed(t *testing.T) {
	h := NewHandler(&fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(&fakeProvider{})

	req := httptest.NewRequest(http.MethodPost, client.BreedListPath, nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestDirectoryAgainstServer(t *testing.T) {
	server := httptest.NewServer(NewHandler(&fakeProvider{breeds: testBreeds}).Routes())
	t.Cleanup(server.Close)

	c := client.NewCatalogClient(config.CatalogConfig{BaseURL: server.URL, Timeout: 2})
	t.Cleanup(func() { _ = c.Close() })

	d := directory.New(c)
	require.False(t, d.IsReady())
	require.NoError(t, d.Init(context.Background()))

	assert.True(t, d.IsReady())
	assert.Equal(t, []domain.Category{
		{Code: "dog", DisplayName: "Dogs"},
		{Code: "cat", DisplayName: "Cats"},
	}, d.Categories())
	assert.Equal(t, testBreeds[:1], d.FindBreedByName(domain.BreedFilter{CategoryCode: "dog"}))
	assert.Equal(t, testBreeds[:1], d.FindBreedByName(domain.BreedFilter{Subtext: "LAB"}))

	breed, err := c.GetBreed(context.Background(), "a2")
	require.NoError(t, err)
	assert.Equal(t, testBreeds[1], *breed)
}
