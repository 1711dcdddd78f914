package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"coursechat/models"
	"coursechat/services"

	"github.com/gorilla/mux"
)

type queryService interface {
	Query(ctx context.Context, query, sessionID string) (string, []models.Source, error)
}

type ChatHandler struct {
	rag      queryService
	sessions *services.SessionService
}

func NewChatHandler(rag queryService, sessions *services.SessionService) *ChatHandler {
	return &ChatHandler{rag: rag, sessions: sessions}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/query", h.Query).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID}/clear", h.ClearSession).Methods("POST")
}

func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received query request")

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode query request JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		log.Printf("[ERROR] Empty query provided")
		h.writeErrorResponse(w, http.StatusBadRequest, "Query is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.sessions.CreateSession()
	}

	answer, sources, err := h.rag.Query(r.Context(), req.Query, sessionID)
	if err != nil {
		log.Printf("[ERROR] Query processing failed: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if sources == nil {
		sources = []models.Source{}
	}

	h.writeJSONResponse(w, http.StatusOK, models.QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

func (h *ChatHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]
	h.sessions.ClearSession(sessionID)
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *ChatHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ChatHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
