package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/lead-ledger/internal/ingest"
	"github.com/ignite/lead-ledger/internal/lead"
	"github.com/ignite/lead-ledger/internal/service"
)

const maxUploadBytes = 32 << 20 // 32 MB

// handleRun accepts a multipart CSV upload and runs one reconciliation.
//
//	POST /api/runs
//	form fields: file (csv), hours, days, since_midnight, period, relocate_only
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	opts, err := s.runOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var batch *ingest.Batch
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		opts.Source = header.Filename
		batch, err = ingest.ReadBatch(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unreadable csv: %v", err))
			return
		}
	case opts.RelocateOnly:
		opts.Source = "api"
	default:
		writeError(w, http.StatusBadRequest, "file is required unless relocate_only is set")
		return
	}

	report, err := s.runner.Run(r.Context(), batch, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// runOptions reads window and run parameters from the form, falling back
// to the configured defaults when none are supplied.
func (s *Server) runOptions(r *http.Request) (service.RunOptions, error) {
	opts := service.RunOptions{
		Period:       r.FormValue("period"),
		RelocateOnly: parseBool(r.FormValue("relocate_only")),
	}
	if opts.Period == "" {
		opts.Period = s.runner.Cfg.Ledger.Period
	}

	w := lead.Window{Reference: time.Now()}
	var set bool
	if v := r.FormValue("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("hours must be a positive integer")
		}
		w.Hours, set = n, true
	}
	if v := r.FormValue("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("days must be a positive integer")
		}
		w.Days, set = n, true
	}
	if parseBool(r.FormValue("since_midnight")) {
		w.SinceMidnight, set = true, true
	}
	if !set {
		clean := s.runner.Cfg.Clean
		w.Hours, w.Days, w.SinceMidnight = clean.Hours, clean.Days, clean.SinceMidnight
	}
	if err := w.Validate(); err != nil {
		return opts, err
	}
	opts.Window = w
	return opts, nil
}

// handleHistory returns past run entries, most recent first.
//
//	GET /api/history?limit=N
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.runner.History.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// stored oldest-first; serve newest-first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(entries) {
			entries = entries[:n]
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// handleHealth reports liveness and ledger reachability.
//
//	GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	ledgerState := "absent"
	if _, err := s.runner.Store.ReadBytes(); err == nil {
		ledgerState = "present"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"ledger": ledgerState,
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
