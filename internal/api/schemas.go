package api

import (
	"time"

	"github.com/studiojuai/studio-agent/internal/chat"
	"github.com/studiojuai/studio-agent/internal/dispatch"
	"github.com/studiojuai/studio-agent/internal/project"
	"github.com/studiojuai/studio-agent/internal/render"
	"github.com/studiojuai/studio-agent/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type CatalogResponse struct {
	Models       []string `json:"models"`
	StylePresets []string `json:"style_presets"`
}

type CreateProjectRequest struct {
	Title string `json:"title"`
}

type ProjectResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	AspectRatio  string `json:"aspect_ratio"`
	StylePreset  string `json:"style_preset"`
	Model        string `json:"model"`
	Status       string `json:"status"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type TimelineResponse struct {
	Clips           []timeline.Clip `json:"clips"`
	SelectedID      string          `json:"selected_id,omitempty"`
	TotalDurationMs int             `json:"total_duration_ms"`
}

type AddClipRequest struct {
	Kind       timeline.ClipKind `json:"kind"`
	StartMs    int               `json:"start_ms"`
	DurationMs int               `json:"duration_ms"`
	Track      int               `json:"track"`
	Label      string            `json:"label,omitempty"`
	SourceURL  string            `json:"source_url,omitempty"`
}

type GenerateRequest struct {
	Prompt      string `json:"prompt"`
	Model       string `json:"model,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	StylePreset string `json:"style_preset,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type JobResponse struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Message   string `json:"message,omitempty"`
	ResultURL string `json:"result_url,omitempty"`
	Error     string `json:"error,omitempty"`
	Model     string `json:"model,omitempty"`
	Timeout   bool   `json:"timeout,omitempty"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type TranscriptResponse struct {
	Turns []chat.Turn `json:"turns"`
}

type ChatResponse struct {
	Result dispatch.Result `json:"result"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type PlayerPrefs struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToResponse(p project.Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		AspectRatio:  p.AspectRatio,
		StylePreset:  p.StylePreset,
		Model:        p.Model,
		Status:       p.Status,
		VideoURL:     p.VideoURL,
		ThumbnailURL: p.ThumbnailURL,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

func JobToResponse(j render.Job) JobResponse {
	return JobResponse{
		ProjectID: j.ProjectID,
		Status:    string(j.Status),
		Progress:  j.Progress,
		Message:   j.Message,
		ResultURL: j.ResultURL,
		Error:     j.Error,
		Model:     j.Model,
		Timeout:   j.Timeout,
	}
}
