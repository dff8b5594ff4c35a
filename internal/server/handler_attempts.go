package server

import (
	"net/http"
	"strconv"

	"github.com/me/sourcewatch/pkg/model"
)

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, reqID, http.StatusBadRequest, model.NewValidationError("limit must be an integer"))
			return
		}
		opts.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, reqID, http.StatusBadRequest, model.NewValidationError("offset must be an integer"))
			return
		}
		opts.Offset = n
	}
	opts.Clamp()

	recs, total, err := s.store.ListAttempts(r.Context(), opts)
	if err != nil {
		s.logger.Error("list attempts", "error", err, "request_id", reqID)
		s.fail(w, reqID, http.StatusInternalServerError, model.NewInternalError("list attempts failed"))
		return
	}
	if recs == nil {
		recs = []model.AttemptRecord{}
	}

	s.respondPage(w, reqID, recs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(recs) < total,
	})
}
