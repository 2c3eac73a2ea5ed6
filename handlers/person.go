package handlers

import (
	"net/http"

	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PersonHandler struct {
	People *services.PeopleService
	Logger *zap.Logger
}

func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req services.PersonInput
	if !decodeJSON(w, r, &req) {
		return
	}
	person, err := ph.People.Create(r.Context(), ownerID(r), req)
	if err != nil {
		writeServiceError(w, ph.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := ph.People.List(r.Context(), ownerID(r), services.PersonListOptions{
		Sector:         q.Get("sector"),
		Company:        q.Get("company"),
		City:           q.Get("city"),
		ContactedSince: q.Get("contacted_since"),
		Page:           queryInt(r, "page", 1),
	})
	if err != nil {
		writeServiceError(w, ph.Logger, err)
		return
	}
	if page.Items == nil {
		page.Items = []models.Person{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := ph.People.Get(r.Context(), ownerID(r), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, ph.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var req services.PersonInput
	if !decodeJSON(w, r, &req) {
		return
	}
	person, err := ph.People.Update(r.Context(), ownerID(r), chi.URLParam(r, "slug"), req)
	if err != nil {
		writeServiceError(w, ph.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// DeletePerson hides the person, or removes them for good with ?hard=true.
func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if hard := queryBool(r, "hard"); hard != nil && *hard {
		if err := ph.People.HardDelete(r.Context(), ownerID(r), slug); err != nil {
			writeServiceError(w, ph.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	n, err := ph.People.SoftDelete(r.Context(), ownerID(r), slug)
	if err != nil {
		writeServiceError(w, ph.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

func (ph *PersonHandler) SearchPeople(w http.ResponseWriter, r *http.Request) {
	result, err := ph.People.Search(r.Context(), ownerID(r), r.URL.Query().Get("q"), queryInt(r, "page", 1))
	if err != nil {
		writeServiceError(w, ph.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (ph *PersonHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := ph.People.Cities(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, ph.Logger, err)
		return
	}
	if cities == nil {
		cities = []string{}
	}
	writeJSON(w, http.StatusOK, cities)
}

func (ph *PersonHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := ph.People.Companies(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, ph.Logger, err)
		return
	}
	if companies == nil {
		companies = []models.Company{}
	}
	writeJSON(w, http.StatusOK, companies)
}
