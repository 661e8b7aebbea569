package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/openmineral/confirmation/internal/db"
	"github.com/openmineral/confirmation/internal/jobs"
	"github.com/openmineral/confirmation/internal/review"
)

func isNotFound(err error) bool { return errors.Is(err, db.ErrNotFound) }

func (s *Server) handleCreateConfirmation(w http.ResponseWriter, r *http.Request) {
	var p db.CreateConfirmationParams
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, bodyStatus(err), "invalid JSON body: "+err.Error())
		return
	}
	c, err := s.Q.CreateConfirmation(r.Context(), p)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	// The wizard is done with its draft once the confirmation exists.
	s.Sess.Remove(r.Context(), draftKey)

	hlog.FromRequest(r).Info().Int64("confirmation_id", c.ID).Msg("business confirmation created")
	writeJSON(w, r, http.StatusCreated, c)
}

func (s *Server) handleGetConfirmation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	c, err := s.Q.GetConfirmation(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

// handleReviewConfirmation runs the pre-submit checks on an unsaved
// confirmation.
func (s *Server) handleReviewConfirmation(w http.ResponseWriter, r *http.Request) {
	var p db.CreateConfirmationParams
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, bodyStatus(err), "invalid JSON body: "+err.Error())
		return
	}
	c, err := p.Build()
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	findings := review.Check(c)
	writeJSON(w, r, http.StatusOK, map[string]any{
		"findings": findings,
		"blocking": review.Blocking(findings),
	})
}

type triggerRequest struct {
	BusinessConfirmationID db.OptInt `json:"business_confirmation_id"`
}

func (s *Server) handleTriggerProcessing(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, bodyStatus(err), "invalid JSON body: "+err.Error())
		return
	}
	if !req.BusinessConfirmationID.Valid || req.BusinessConfirmationID.Int64 == 0 {
		writeError(w, http.StatusBadRequest, "business_confirmation_id is required")
		return
	}
	confirmationID := req.BusinessConfirmationID.Int64
	log := hlog.FromRequest(r).With().Int64("confirmation_id", confirmationID).Logger()

	taskID := uuid.NewString()
	pt, err := s.Q.CreateProcessingTask(r.Context(), confirmationID, taskID)
	if errors.Is(err, db.ErrForeignKey) {
		writeError(w, http.StatusNotFound, "business confirmation not found")
		return
	}
	if err != nil {
		s.storeError(w, r, err)
		return
	}

	task, err := jobs.NewProcessConfirmationTask(pt.ID, taskID, s.jobTimeout)
	if err == nil {
		_, err = s.Jobs.Enqueue(task)
	}
	if err != nil {
		log.Error().Err(err).Str("task_id", taskID).Msg("enqueue processing failed")
		if _, ferr := s.Q.CompleteProcessingTask(r.Context(), pt.ID, db.TaskFailed); ferr != nil {
			log.Error().Err(ferr).Msg("mark processing task failed")
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("task_id", taskID).Int64("processing_task_id", pt.ID).Msg("processing enqueued")
	writeJSON(w, r, http.StatusCreated, pt)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	pt, err := s.Q.GetProcessingTaskByTaskID(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pt)
}
