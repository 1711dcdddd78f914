package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"coursechat/models"

	"github.com/gorilla/mux"
)

type courseStatsProvider interface {
	GetCourseStats(ctx context.Context) (*models.CourseStats, error)
}

type CourseHandler struct {
	store courseStatsProvider
}

func NewCourseHandler(store courseStatsProvider) *CourseHandler {
	return &CourseHandler{store: store}
}

func (h *CourseHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/courses", h.GetCourseStats).Methods("GET")
}

func (h *CourseHandler) GetCourseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetCourseStats(r.Context())
	if err != nil {
		log.Printf("[ERROR] Failed to get course stats: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}
