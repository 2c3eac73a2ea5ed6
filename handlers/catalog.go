package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// catalogService is what CompanyService, SectorService and GroupService have in common.
type catalogService[T any, In any] interface {
	Create(ctx context.Context, owner uint, in In) (*T, error)
	Update(ctx context.Context, owner uint, slug string, in In) (*T, error)
	Get(ctx context.Context, owner uint, slug string) (*T, error)
	List(ctx context.Context, owner uint) ([]T, error)
	SoftDelete(ctx context.Context, owner uint, slug string) (int64, error)
	HardDelete(ctx context.Context, owner uint, slug string) error
}

// CatalogHandler serves CRUD for a slug-addressed catalog such as companies.
type CatalogHandler[T any, In any] struct {
	Service catalogService[T, In]
	Logger  *zap.Logger
}

func NewCatalogHandler[T any, In any](svc catalogService[T, In], logger *zap.Logger) *CatalogHandler[T, In] {
	return &CatalogHandler[T, In]{Service: svc, Logger: logger}
}

// Routes mounts the handler on r under the {slug} parameter.
func (h *CatalogHandler[T, In]) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Route("/{slug}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

func (h *CatalogHandler[T, In]) Create(w http.ResponseWriter, r *http.Request) {
	var in In
	if !decodeJSON(w, r, &in) {
		return
	}
	rec, err := h.Service.Create(r.Context(), ownerID(r), in)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *CatalogHandler[T, In]) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Service.List(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if recs == nil {
		recs = []T{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *CatalogHandler[T, In]) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Get(r.Context(), ownerID(r), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *CatalogHandler[T, In]) Update(w http.ResponseWriter, r *http.Request) {
	var in In
	if !decodeJSON(w, r, &in) {
		return
	}
	rec, err := h.Service.Update(r.Context(), ownerID(r), chi.URLParam(r, "slug"), in)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *CatalogHandler[T, In]) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if hard := queryBool(r, "hard"); hard != nil && *hard {
		if err := h.Service.HardDelete(r.Context(), ownerID(r), slug); err != nil {
			writeServiceError(w, h.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	n, err := h.Service.SoftDelete(r.Context(), ownerID(r), slug)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}
