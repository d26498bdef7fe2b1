package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type registerGenerationRequest struct {
	TaskID      string `json:"task_id" validate:"required"`
	Kind        string `json:"kind" validate:"required,oneof=image video"`
	OwnerUserID string `json:"owner_user_id" validate:"required"`
	OwnerAPIKey string `json:"owner_api_key"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	Resolution  string `json:"resolution"`
}

type generationResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// RegisterGeneration records a job the submission collaborator has already
// placed with the vendor. It must be called immediately after submission
// succeeds, before the vendor's callback can arrive.
func (a *App) RegisterGeneration(w http.ResponseWriter, r *http.Request) {
	var req registerGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	task := domain.GenerationTask{
		TaskID:      req.TaskID,
		Kind:        domain.TaskKind(req.Kind),
		Status:      domain.TaskStatusProcessing,
		OwnerUserID: req.OwnerUserID,
		OwnerAPIKey: req.OwnerAPIKey,
		RequestParams: domain.RequestParams{
			Prompt:      req.Prompt,
			AspectRatio: req.AspectRatio,
			Resolution:  req.Resolution,
		},
	}
	if err := a.Registry.Create(r.Context(), task); err != nil {
		if errors.Is(err, domain.ErrTaskExists) {
			a.error(w, http.StatusConflict, "conflict", "task already registered")
			return
		}
		a.Logger.Error().Err(err).Str("task_id", req.TaskID).Msg("generations: register failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register task")
		return
	}

	a.json(w, http.StatusCreated, generationResponse{TaskID: req.TaskID, Status: string(domain.TaskStatusProcessing)})
}

type statusResponse struct {
	Status       string `json:"status"`
	ResultURL    string `json:"result_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// GenerationStatus is the client-facing read path: it translates registry
// state into a generation-status response without touching the vendor.
func (a *App) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task_id required")
		return
	}

	task, err := a.Registry.Get(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "task not found")
			return
		}
		a.Logger.Error().Err(err).Str("task_id", taskID).Msg("generations: status lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load task")
		return
	}

	a.json(w, http.StatusOK, statusResponse{
		Status:       string(task.Status),
		ResultURL:    task.ResultURL,
		ErrorMessage: task.ErrorMessage,
	})
}
