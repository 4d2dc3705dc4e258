package api

import (
	"context"
	"errors"
	"net/http"

	"petmarket/catalog/internal/client"
	"petmarket/catalog/internal/domain"
	"petmarket/catalog/internal/service"

	log "github.com/sirupsen/logrus"
)

// BreedProvider is implemented by service.Service
type BreedProvider interface {
	ListBreeds(ctx context.Context) ([]domain.Breed, error)
	GetBreedByCode(ctx context.Context, code string) (*domain.Breed, error)
}

type Handler struct {
	breeds BreedProvider
}

func NewHandler(breeds BreedProvider) *Handler {
	return &Handler{breeds: breeds}
}

// Routes registers the public catalog endpoints
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET "+client.BreedListPath, h.GetBreedList)
	mux.HandleFunc("GET "+client.BreedPath+"{code}", h.GetBreed)

	return WithRequestLogging(mux)
}

// GetBreedList handles GET /api/v1/public/animal/breed_list
func (h *Handler) GetBreedList(w http.ResponseWriter, r *http.Request) {
	breeds, err := h.breeds.ListBreeds(r.Context())
	if err != nil {
		log.WithField("request_id", RequestID(r.Context())).Errorf("❌ Failed to list breeds: %v", err)
		ErrorResponse(w, http.StatusInternalServerError, "Failed to load breed list")
		return
	}

	JSONResponse(w, http.StatusOK, breeds)
}

// GetBreed handles GET /api/v1/public/animal/breed/{code}
func (h *Handler) GetBreed(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		ErrorResponse(w, http.StatusBadRequest, "breed code is required")
		return
	}

	breed, err := h.breeds.GetBreedByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrBreedNotFound) {
			log.WithField("request_id", RequestID(r.Context())).Warnf("invalid animal breed code: %s", code)
			ErrorResponse(w, http.StatusNotFound, "breed not found")
			return
		}
		log.WithField("request_id", RequestID(r.Context())).Errorf("❌ Failed to get breed %s: %v", code, err)
		ErrorResponse(w, http.StatusInternalServerError, "Failed to load breed")
		return
	}

	JSONResponse(w, http.StatusOK, breed)
}
