package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/openmineral/confirmation/internal/db"
)

// packagingByTransport restricts the packaging offered for a transport
// mode. Modes not listed may use any packaging.
var packagingByTransport = map[string][]string{
	"Rail": {"Bulk", "Big Bags"},
	"Ship": {"Bulk"},
}

// reference mounts list and create for one reference table.
func reference[T any, P interface {
	*T
	db.Record
}](s *Server, r chi.Router, path string) {
	both(r, http.MethodGet, path, listHandler[T, P](s))
	both(r, http.MethodPost, path, createHandler[T, P](s))
}

func listHandler[T any, P interface {
	*T
	db.Record
}](s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.List[T, P](r.Context(), s.Q, nil)
		if err != nil {
			s.storeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, rows)
	}
}

func createHandler[T any, P interface {
	*T
	db.Record
}](s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var row T
		if err := decodeJSON(r, &row); err != nil {
			writeError(w, bodyStatus(err), "invalid JSON body: "+err.Error())
			return
		}
		if err := db.Create[T, P](r.Context(), s.Q, &row); err != nil {
			s.storeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, row)
	}
}

// handleListPackaging lists packaging, narrowed by the transport_mode
// query parameter when it names a restricted mode.
func (s *Server) handleListPackaging(w http.ResponseWriter, r *http.Request) {
	var names []string
	if raw := r.URL.Query().Get("transport_mode"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			mode, err := db.Get[db.TransportMode](r.Context(), s.Q, id)
			switch {
			case err == nil:
				names = packagingByTransport[mode.Name]
			case !isNotFound(err):
				s.storeError(w, r, err)
				return
			default:
				hlog.FromRequest(r).Debug().Int64("transport_mode", id).Msg("unknown transport mode, listing all packaging")
			}
		}
	}

	rows, err := s.Q.ListPackaging(r.Context(), names)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}
