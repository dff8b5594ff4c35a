package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/me/sourcewatch/pkg/model"
)

func newRequestID() string {
	return "req_" + uuid.New().String()[:8]
}

// respond writes data inside the ok envelope.
func (s *Server) respond(w http.ResponseWriter, reqID string, data any) {
	s.write(w, http.StatusOK, model.Response{
		Status:    "ok",
		RequestID: reqID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// respondPage writes a list with its pagination metadata.
func (s *Server) respondPage(w http.ResponseWriter, reqID string, data any, pg *model.Pagination) {
	s.write(w, http.StatusOK, model.Response{
		Status:     "ok",
		RequestID:  reqID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: pg,
	})
}

// fail writes an error envelope with the given HTTP status.
func (s *Server) fail(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	s.write(w, status, model.Response{
		Status:    "error",
		RequestID: reqID,
		Timestamp: time.Now().UTC(),
		Error:     apiErr,
	})
}

func (s *Server) write(w http.ResponseWriter, status int, resp model.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response", "error", err, "request_id", resp.RequestID)
	}
}
