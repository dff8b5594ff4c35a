package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/me/sourcewatch/internal/config"
	"github.com/me/sourcewatch/pkg/model"
)

type configResponse struct {
	CheckIntervalMs    int64 `json:"check_interval_ms"`
	SourcesPerCheck    int   `json:"sources_per_check"`
	UseCooperativeMode bool  `json:"use_cooperative_mode"`
	RebuildIntervalMs  int64 `json:"rebuild_interval_ms"`
}

func toConfigResponse(s config.State) configResponse {
	return configResponse{
		CheckIntervalMs:    s.CheckInterval.Milliseconds(),
		SourcesPerCheck:    s.SourcesPerCheck,
		UseCooperativeMode: s.UseCooperativeMode,
		RebuildIntervalMs:  s.RebuildInterval.Milliseconds(),
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	s.respond(w, reqID, toConfigResponse(s.engine.Config()))
}

// configUpdate is a partial update: absent fields keep their stored value.
type configUpdate struct {
	CheckIntervalMs    *int64 `json:"check_interval_ms"`
	SourcesPerCheck    *int64 `json:"sources_per_check"`
	UseCooperativeMode *bool  `json:"use_cooperative_mode"`
	RebuildIntervalMs  *int64 `json:"rebuild_interval_ms"`
}

// handlePutConfig persists the update to the settings store and reinstalls
// the scheduler. Out-of-range values are clamped when the engine reads them
// back; the response carries the effective configuration.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var upd configUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.fail(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body"))
		return
	}

	if upd.CheckIntervalMs != nil {
		if err := s.store.SetInt(config.KeyCheckIntervalMs, *upd.CheckIntervalMs); err != nil {
			s.respondStoreError(w, reqID, err)
			return
		}
	}
	if upd.SourcesPerCheck != nil {
		if err := s.store.SetInt(config.KeySourcesPerCheck, *upd.SourcesPerCheck); err != nil {
			s.respondStoreError(w, reqID, err)
			return
		}
	}
	if upd.UseCooperativeMode != nil {
		if err := s.store.SetBool(config.KeyUseCooperative, *upd.UseCooperativeMode); err != nil {
			s.respondStoreError(w, reqID, err)
			return
		}
	}
	if upd.RebuildIntervalMs != nil {
		if err := s.store.SetInt(config.KeyRebuildIntervalMs, *upd.RebuildIntervalMs); err != nil {
			s.respondStoreError(w, reqID, err)
			return
		}
	}

	s.engine.OnConfigChanged(time.Now())
	s.respond(w, reqID, toConfigResponse(s.engine.Config()))
}

func (s *Server) respondStoreError(w http.ResponseWriter, reqID string, err error) {
	s.logger.Error("persist setting", "error", err, "request_id", reqID)
	s.fail(w, reqID, http.StatusInternalServerError, model.NewInternalError("persist setting failed"))
}
