package handlers

import (
	"net/http"

	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ConversationHandler struct {
	Conversations *services.ConversationService
	Logger        *zap.Logger
}

func (ch *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req services.ConversationInput
	if !decodeJSON(w, r, &req) {
		return
	}
	conv, err := ch.Conversations.Create(r.Context(), ownerID(r), req)
	if err != nil {
		writeServiceError(w, ch.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (ch *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seedsOnly := queryBool(r, "seeds_only")
	page, err := ch.Conversations.List(r.Context(), ownerID(r), services.ConversationListOptions{
		Sector:    q.Get("sector"),
		Mode:      q.Get("mode"),
		SeedsOnly: seedsOnly != nil && *seedsOnly,
		DateSince: q.Get("date_since"),
		Person:    q.Get("person"),
		Seed:      queryBool(r, "seed"),
		Page:      queryInt(r, "page", 1),
	})
	if err != nil {
		writeServiceError(w, ch.Logger, err)
		return
	}
	if page.Items == nil {
		page.Items = []models.Conversation{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (ch *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := ch.Conversations.Get(r.Context(), ownerID(r), chi.URLParam(r, "conversation_id"))
	if err != nil {
		writeServiceError(w, ch.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (ch *ConversationHandler) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	var req services.ConversationInput
	if !decodeJSON(w, r, &req) {
		return
	}
	conv, err := ch.Conversations.Update(r.Context(), ownerID(r), chi.URLParam(r, "conversation_id"), req)
	if err != nil {
		writeServiceError(w, ch.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (ch *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversation_id")
	if hard := queryBool(r, "hard"); hard != nil && *hard {
		if err := ch.Conversations.HardDelete(r.Context(), ownerID(r), id); err != nil {
			writeServiceError(w, ch.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	n, err := ch.Conversations.SoftDelete(r.Context(), ownerID(r), id)
	if err != nil {
		writeServiceError(w, ch.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}
