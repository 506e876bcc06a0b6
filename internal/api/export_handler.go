package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiojuai/studio-agent/internal/export"
	"github.com/studiojuai/studio-agent/internal/timeline"
)

// exportEDLHandler renders the current timeline's video track as a CMX 3600
// EDL. With an output_dir the file is written there; otherwise the content
// is returned inline.
func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		var req export.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Format != "" && !strings.EqualFold(req.Format, "edl") {
			WriteError(w, http.StatusBadRequest, "unsupported format", "BAD_REQUEST")
			return
		}
		if req.FrameRate == 0 {
			req.FrameRate = 30.0
		}

		events := export.EventsFromClips(sess.Store.ForTrack(timeline.TrackVideo))
		if len(events) == 0 {
			WriteError(w, http.StatusConflict, "timeline has no exportable video clips", "EMPTY_TIMELINE")
			return
		}

		title := sess.Title()
		content := export.GenerateEDL(events, title, req.FrameRate)

		resp := export.ExportResponse{
			Status:     "ok",
			Format:     "edl",
			EventCount: len(events),
		}

		if req.OutputDir == "" {
			resp.Content = content
			WriteJSON(w, http.StatusOK, resp)
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		filename := export.SanitizeName(title, 64)
		if filename == "" {
			filename = "timeline"
		}
		outputPath := filepath.Join(req.OutputDir, filename+".edl")
		if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
			cfg.Logger.Error("failed to write EDL", "path", outputPath, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to write EDL file", "INTERNAL_ERROR")
			return
		}

		resp.OutputPath = outputPath
		WriteJSON(w, http.StatusOK, resp)
	}
}
