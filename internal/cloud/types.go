package cloud

import "strings"

// JobState is the normalized progress state. The backend reports both
// "completed" and "succeed" for terminal success and a handful of
// queued/processing variants; they are collapsed here, at the boundary,
// so the rest of the core only sees one tag per state.
type JobState string

const (
	StatePreparing JobState = "preparing"
	StateRendering JobState = "rendering"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

func normalizeState(raw string) JobState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed", "succeed", "succeeded", "success":
		return StateCompleted
	case "failed", "error":
		return StateFailed
	case "pending", "queued", "preparing", "submitted", "staged":
		return StatePreparing
	default:
		// "processing", "rendering", "running" and anything unrecognized
		// while the job is alive.
		return StateRendering
	}
}

type GenerateRequest struct {
	ProjectID   string `json:"project_id"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio"`
	Duration    int    `json:"duration"`
	StylePreset string `json:"style_preset"`
	ImageURL    string `json:"image_url,omitempty"`
}

type RoutingInfo struct {
	SelectedModel   string  `json:"selected_model"`
	OptimizedPrompt string  `json:"optimized_prompt,omitempty"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning,omitempty"`
}

type GenerateAck struct {
	Success   bool         `json:"success"`
	ProjectID string       `json:"project_id"`
	TaskID    string       `json:"task_id"`
	Status    string       `json:"status"`
	Progress  int          `json:"progress"`
	Message   string       `json:"message"`
	Model     string       `json:"model"`
	Routing   *RoutingInfo `json:"routing_info,omitempty"`
}

// ProgressReport is one poll tick's view of a generation job. State carries
// the normalized status; Status keeps the raw backend string for logging.
type ProgressReport struct {
	ProjectID    string   `json:"project_id"`
	TaskID       string   `json:"task_id,omitempty"`
	Status       string   `json:"status"`
	State        JobState `json:"-"`
	Progress     int      `json:"progress"`
	Message      string   `json:"message"`
	VideoURL     string   `json:"video_url,omitempty"`
	DurationSec  float64  `json:"duration,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
}

type ClassifyRequest struct {
	UserID    string         `json:"user_id"`
	Message   string         `json:"message"`
	ProjectID string         `json:"project_id,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

type ActionCard struct {
	Title  string `json:"title"`
	Action string `json:"action"`
}

type ClassifyResponse struct {
	Message     string       `json:"message"`
	ActionType  string       `json:"action_type,omitempty"`
	ActionCards []ActionCard `json:"action_cards,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Routing     *RoutingInfo `json:"routing_decision,omitempty"`
}

type AutoEditRequest struct {
	ProjectID          string `json:"project_id"`
	TemplateID         string `json:"template_id"`
	Headline           string `json:"headline"`
	Subheadline        string `json:"subheadline,omitempty"`
	BackgroundVideoURL string `json:"background_video_url,omitempty"`
	BrandColor         string `json:"brand_color"`
}

type AutoEditResponse struct {
	Success   bool   `json:"success"`
	ProjectID string `json:"project_id"`
	RenderID  string `json:"render_id"`
	Status    string `json:"status"`
	VideoURL  string `json:"video_url,omitempty"`
	Message   string `json:"message"`
}

type UploadRequest struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UploadResponse struct {
	URL string `json:"url"`
}
