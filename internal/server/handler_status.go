package server

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/me/sourcewatch/internal/scheduler"
	"github.com/me/sourcewatch/pkg/model"
)

type statusResponse struct {
	scheduler.Snapshot
	LastRebuild string              `json:"last_rebuild"`
	Loaded      string              `json:"loaded"`
	Attempts    *model.AttemptStats `json:"attempts,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	snap := s.engine.Snapshot()

	resp := statusResponse{Snapshot: snap}
	resp.LastRebuild = relativeOrNever(snap.LastRebuildAt)
	resp.Loaded = relativeOrNever(snap.LoadedAt)

	// Attempt totals are advisory; a store error degrades the response
	// instead of failing it.
	if stats, err := s.store.AttemptStats(r.Context()); err == nil {
		resp.Attempts = &stats
	} else {
		s.logger.Warn("attempt stats", "error", err, "request_id", reqID)
	}

	s.respond(w, reqID, resp)
}

func relativeOrNever(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
