package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/openmineral/confirmation/internal/assay"
	"github.com/openmineral/confirmation/internal/suggest"
)

const (
	msgNoFile      = "No file uploaded"
	msgUnsupported = "Unsupported file format. Please upload .xlsx, .xls, or .csv file"
	msgAssayHint   = "Please ensure your file contains columns with element names (Pb, Zn, Cu, Ag)"
)

type suggestionError struct {
	Error string `json:"error"`
	suggest.Result
}

// handleSuggestions always answers with a suggestion payload, falling
// back to the fixed defaults with a 500 when the request cannot be served.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggest.Request
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, r, http.StatusInternalServerError, suggestionError{Error: err.Error(), Result: suggest.Default()})
		return
	}
	res, err := s.Suggest.Suggest(r.Context(), req)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("suggestion failed")
		writeJSON(w, r, http.StatusInternalServerError, suggestionError{Error: err.Error(), Result: res})
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// uploadedFile returns the multipart "file" part. A request without one
// yields assay.ErrNoFile.
func (s *Server) uploadedFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(s.uploadMaxBytes); err != nil {
		if bodyStatus(err) == http.StatusRequestEntityTooLarge {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", assay.ErrNoFile, err)
	}
	file, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, assay.ErrNoFile
	}
	return file, hdr, err
}

func (s *Server) handleParseAssay(w http.ResponseWriter, r *http.Request) {
	file, hdr, err := s.uploadedFile(r)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}
	switch {
	case errors.Is(err, assay.ErrNoFile):
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	case bodyStatus(err) == http.StatusRequestEntityTooLarge:
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	case err != nil:
		hlog.FromRequest(r).Warn().Err(err).Msg("read upload")
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close() //nolint:errcheck

	res, err := assay.Parse(hdr.Filename, file)
	switch {
	case errors.Is(err, assay.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, msgUnsupported)
		return
	case err != nil:
		hlog.FromRequest(r).Warn().Err(err).Str("file", hdr.Filename).Msg("assay parse failed")
		writeJSON(w, r, http.StatusBadRequest, map[string]string{
			"error":   "Error parsing file: " + err.Error(),
			"message": msgAssayHint,
		})
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"data":    res,
		"message": "Successfully parsed " + hdr.Filename,
	})
}

const draftKey = "wizard_draft"

// The wizard draft is kept verbatim as a JSON object in the session.

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft := s.Sess.GetString(r.Context(), draftKey)
	if draft == "" {
		draft = "{}"
	}
	writeJSON(w, r, http.StatusOK, json.RawMessage(draft))
}

func (s *Server) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	var draft map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil || draft == nil {
		writeError(w, http.StatusBadRequest, "draft must be a JSON object")
		return
	}
	b, err := json.Marshal(draft)
	if err != nil {
		writeError(w, http.StatusBadRequest, "draft must be a JSON object")
		return
	}
	s.Sess.Put(r.Context(), draftKey, string(b))
	writeJSON(w, r, http.StatusOK, json.RawMessage(b))
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	s.Sess.Remove(r.Context(), draftKey)
	w.WriteHeader(http.StatusNoContent)
}
