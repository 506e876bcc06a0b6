package project

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses as persisted. A project is draft until its first
// generation completes.
const (
	StatusDraft = "draft"
	StatusReady = "ready"
)

const (
	DefaultAspectRatio = "9:16"
	DefaultModel       = "auto"
)

// StylePresets is the ordered color-grade list StyleChange cycles through.
var StylePresets = []string{"warm_film", "cool_modern", "golden_hour", "cinematic_teal_orange"}

// Models lists the generation backends the director can route to. "auto"
// lets the backend pick.
var Models = []string{"auto", "kling", "veo", "sora", "hailuo", "luma"}

type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AspectRatio  string    `json:"aspect_ratio"`
	StylePreset  string    `json:"style_preset"`
	Model        string    `json:"model"`
	Status       string    `json:"status"`
	VideoURL     string    `json:"video_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New builds a draft project with defaults filled in.
func New(title string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:          uuid.NewString(),
		Title:       title,
		AspectRatio: DefaultAspectRatio,
		StylePreset: StylePresets[0],
		Model:       DefaultModel,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NextStylePreset returns the preset after current in the fixed cycle,
// wrapping to the first after the last. An unknown preset restarts the cycle.
func NextStylePreset(current string) string {
	for i, p := range StylePresets {
		if p == current {
			return StylePresets[(i+1)%len(StylePresets)]
		}
	}
	return StylePresets[0]
}

// ValidModel reports whether name is a known generation backend.
func ValidModel(name string) bool {
	for _, m := range Models {
		if m == name {
			return true
		}
	}
	return false
}
