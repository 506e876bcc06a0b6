package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/studiojuai/studio-agent/internal/chat"
	"github.com/studiojuai/studio-agent/internal/cloud"
	"github.com/studiojuai/studio-agent/internal/config"
	"github.com/studiojuai/studio-agent/internal/project"
	"github.com/studiojuai/studio-agent/internal/render"
	"github.com/studiojuai/studio-agent/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	if cfg.AdminPassword != "" {
		r.Post("/auth/login", loginHandler(cfg))
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/catalog", catalogHandler())

		r.Post("/projects", createProjectHandler(cfg))
		r.Get("/projects", listProjectsHandler(cfg))
		r.Get("/projects/current", currentProjectHandler(cfg))
		r.Post("/projects/{id}/open", openProjectHandler(cfg))

		r.Get("/timeline", timelineHandler(cfg))
		r.Post("/timeline/clips", addClipHandler(cfg))
		r.Patch("/timeline/clips/{id}", updateClipHandler(cfg))
		r.Delete("/timeline/clips/{id}", deleteClipHandler(cfg))
		r.Post("/timeline/clips/{id}/select", selectClipHandler(cfg))
		r.Delete("/timeline/selection", clearSelectionHandler(cfg))

		r.Post("/generate", generateHandler(cfg))
		r.Get("/generate/progress", progressHandler(cfg))
		r.Post("/generate/reset", resetHandler(cfg))

		r.Post("/chat", chatHandler(cfg))
		r.Get("/chat/transcript", transcriptHandler(cfg))

		r.Post("/upload", uploadHandler(cfg))

		r.Get("/player", getPlayerHandler(cfg))
		r.Put("/player", setPlayerHandler(cfg))

		r.Post("/export/edl", exportEDLHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

// loginHandler is the admin gate. A correct password returns the agent's
// bearer token so a browser client can authenticate without reading the
// startup banner.
func loginHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Password != cfg.AdminPassword {
			WriteError(w, http.StatusUnauthorized, "비밀번호가 올바르지 않습니다.", "UNAUTHORIZED")
			return
		}

		token, err := cfg.Repository.GetConfig(r.Context(), "auth_token")
		if err != nil || token == "" {
			cfg.Logger.Error("failed to get auth token from config", "error", err)
			WriteError(w, http.StatusInternalServerError, "auth configuration error", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, LoginResponse{
			Success: true,
			Message: "로그인 성공",
			Token:   token,
		})
	}
}

func catalogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, CatalogResponse{
			Models:       project.Models,
			StylePresets: project.StylePresets,
		})
	}
}

// currentSession resolves the active project session or writes the error
// response itself.
func currentSession(cfg ServerConfig, w http.ResponseWriter) (*project.Session, bool) {
	sess, ok := cfg.Workspace.Current()
	if !ok {
		WriteError(w, http.StatusConflict, "no active project", "NO_PROJECT")
		return nil, false
	}
	return sess, true
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Title == "" {
			WriteError(w, http.StatusBadRequest, "title is required", "BAD_REQUEST")
			return
		}

		sess, err := cfg.Workspace.CreateProject(r.Context(), req.Title)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusCreated, ProjectToResponse(sess.Project()))
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Workspace.ListRecent(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(*p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func currentProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func openProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "project id required", "BAD_REQUEST")
			return
		}

		sess, err := cfg.Workspace.OpenProject(r.Context(), id)
		if errors.Is(err, project.ErrProjectNotFound) {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func timelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		WriteJSON(w, http.StatusOK, TimelineResponse{
			Clips:           sess.Store.Clips(),
			SelectedID:      sess.Store.Selected(),
			TotalDurationMs: sess.Store.TotalDuration(),
		})
	}
}

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		var req AddClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		clip, err := sess.Store.Add(timeline.Clip{
			Kind:      req.Kind,
			Start:     req.StartMs,
			Duration:  req.DurationMs,
			Track:     req.Track,
			Label:     req.Label,
			SourceURL: req.SourceURL,
		})
		if errors.Is(err, timeline.ErrDuplicateSource) {
			WriteError(w, http.StatusConflict, err.Error(), "DUPLICATE_SOURCE")
			return
		}
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, clip)
	}
}

func updateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")
		var patch timeline.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		clip, err := sess.Store.Update(id, patch)
		if errors.Is(err, timeline.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, clip)
	}
}

func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		sess.Store.Remove(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func selectClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		if err := sess.Store.Select(chi.URLParam(r, "id")); err != nil {
			WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearSelectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		sess.Store.ClearSelection()
		w.WriteHeader(http.StatusNoContent)
	}
}

func generateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Prompt == "" {
			WriteError(w, http.StatusBadRequest, "prompt is required", "BAD_REQUEST")
			return
		}
		if req.Model != "" && !project.ValidModel(req.Model) {
			WriteError(w, http.StatusBadRequest, "unknown model", "BAD_REQUEST")
			return
		}

		p := sess.Project()
		params := render.Params{
			Prompt:      req.Prompt,
			Model:       req.Model,
			AspectRatio: req.AspectRatio,
			Duration:    req.Duration,
			StylePreset: req.StylePreset,
			ImageURL:    req.ImageURL,
		}
		if params.Model == "" {
			params.Model = p.Model
		}
		if params.AspectRatio == "" {
			params.AspectRatio = p.AspectRatio
		}
		if params.StylePreset == "" {
			params.StylePreset = p.StylePreset
		}

		if err := sess.Controller.Submit(r.Context(), params); err != nil {
			WriteError(w, http.StatusBadGateway, err.Error(), "UPSTREAM_ERROR")
			return
		}

		WriteJSON(w, http.StatusAccepted, JobToResponse(sess.Controller.Snapshot()))
	}
}

func progressHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		if err := sess.RefreshResult(r.Context()); err != nil {
			cfg.Logger.Warn("failed to persist render result", "error", err)
		}

		WriteJSON(w, http.StatusOK, JobToResponse(sess.Controller.Snapshot()))
	}
}

func resetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		sess.Controller.Reset()
		WriteJSON(w, http.StatusOK, JobToResponse(sess.Controller.Snapshot()))
	}
}

func chatHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Message == "" {
			WriteError(w, http.StatusBadRequest, "message is required", "BAD_REQUEST")
			return
		}

		result := sess.Dispatcher.Dispatch(r.Context(), req.Message)
		WriteJSON(w, http.StatusOK, ChatResponse{Result: result})
	}
}

func transcriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(cfg, w)
		if !ok {
			return
		}

		turns := sess.Transcript.Turns()
		if turns == nil {
			turns = []chat.Turn{}
		}
		WriteJSON(w, http.StatusOK, TranscriptResponse{Turns: turns})
	}
}

func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(cloud.MaxUploadBytes); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart body", "BAD_REQUEST")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file field is required", "BAD_REQUEST")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, cloud.MaxUploadBytes+1))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "failed to read file", "BAD_REQUEST")
			return
		}

		contentType := r.FormValue("content_type")
		if contentType == "" {
			contentType = header.Header.Get("Content-Type")
		}

		req := cloud.UploadRequest{
			Filename:    header.Filename,
			ContentType: contentType,
			Data:        data,
		}

		resp, err := cfg.Assets.UploadAsset(r.Context(), req)
		if errors.Is(err, cloud.ErrValidation) {
			WriteError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
		if err != nil {
			WriteError(w, http.StatusBadGateway, err.Error(), "UPSTREAM_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, UploadResponse{URL: resp.URL})
	}
}

func getPlayerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs := PlayerPrefs{Volume: 1.0}

		if v, err := cfg.Repository.GetConfig(r.Context(), project.ConfigPlayerVolume); err == nil && v != "" {
			if vol, err := strconv.ParseFloat(v, 64); err == nil {
				prefs.Volume = vol
			}
		}
		if m, err := cfg.Repository.GetConfig(r.Context(), project.ConfigPlayerMuted); err == nil {
			prefs.Muted = m == "true"
		}

		WriteJSON(w, http.StatusOK, prefs)
	}
}

func setPlayerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var prefs PlayerPrefs
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if prefs.Volume < 0 || prefs.Volume > 1 {
			WriteError(w, http.StatusBadRequest, "volume must be between 0 and 1", "BAD_REQUEST")
			return
		}

		ctx := r.Context()
		if err := cfg.Repository.SetConfig(ctx, project.ConfigPlayerVolume, strconv.FormatFloat(prefs.Volume, 'f', -1, 64)); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to save preferences", "INTERNAL_ERROR")
			return
		}
		if err := cfg.Repository.SetConfig(ctx, project.ConfigPlayerMuted, strconv.FormatBool(prefs.Muted)); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to save preferences", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, prefs)
	}
}
