package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/stormstats/internal/errors"
	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/models"
)

type submitResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type listResponse struct {
	Replays []models.Replay `json:"replays"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// handleAnalyzeReplay analyzes an upload synchronously. Nothing is stored and
// the upload is removed before the response is written.
func (s *Server) handleAnalyzeReplay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	upload, err := s.saveUpload(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.ReplayService.Analyze(ctx, upload.Path)
	removeFile(log, upload.Path)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("analyzed %s: map=%s, winner=%s", upload.Name, result.Metadata.MapName, result.Metadata.Winner)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmitReplay(w http.ResponseWriter, r *http.Request) {
	upload, err := s.saveUpload(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	rp, err := s.ReplayService.Submit(r.Context(), upload)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/replays/%d", rp.ID))
	writeJSON(w, http.StatusAccepted, submitResponse{ID: rp.ID, Status: rp.Status})
}

func (s *Server) handleListReplays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ReplayFilter{
		Status:   q.Get("status"),
		MapName:  q.Get("map"),
		GameMode: q.Get("mode"),
		Limit:    queryInt(r, "limit", 50),
		Offset:   queryInt(r, "offset", 0),
		OrderDir: strings.ToUpper(q.Get("order")),
	}

	replays, total, err := s.ReplayService.ListReplays(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if replays == nil {
		replays = []models.Replay{}
	}

	writeJSON(w, http.StatusOK, listResponse{
		Replays: replays,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func (s *Server) handleGetReplay(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid replay id"))
		return
	}

	rp, err := s.ReplayService.GetReplay(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rp)
}

func (s *Server) handlePlayerHistory(w http.ResponseWriter, r *http.Request) {
	battleTag, err := url.PathUnescape(chi.URLParam(r, "battleTag"))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid battle tag"))
		return
	}

	records, err := s.ReplayService.PlayerHistory(r.Context(), battleTag, queryInt(r, "limit", 20))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if records == nil {
		records = []models.PlayerRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
