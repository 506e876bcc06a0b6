package timeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type ClipKind string

const (
	KindVideo ClipKind = "video"
	KindImage ClipKind = "image"
	KindAudio ClipKind = "audio"
	KindText  ClipKind = "text"
)

// Track conventions used by the editor surface. The store does not enforce
// any kind-to-track binding; a track may hold clips of any kind.
const (
	TrackVideo   = 0
	TrackOverlay = 1
	TrackAudio   = 2
)

const (
	// MinTimelineMs keeps the ruler visible on an empty timeline.
	MinTimelineMs = 15000
	// TrailingMarginMs is appended after the last clip end.
	TrailingMarginMs = 2000
)

var (
	ErrNotFound        = errors.New("clip not found")
	ErrDuplicateSource = errors.New("clip with this source URL already exists")
)

// Clip is a time-positioned reference to a piece of media (or text) placed
// on a track. Start and Duration are milliseconds.
type Clip struct {
	ID        string   `json:"id"`
	Kind      ClipKind `json:"kind"`
	Start     int      `json:"start_ms"`
	Duration  int      `json:"duration_ms"`
	Track     int      `json:"track"`
	Label     string   `json:"label"`
	SourceURL string   `json:"source_url,omitempty"`
}

func (c *Clip) End() int {
	return c.Start + c.Duration
}

func (c *Clip) validate() error {
	switch c.Kind {
	case KindVideo, KindImage, KindAudio, KindText:
	default:
		return fmt.Errorf("invalid clip kind %q", c.Kind)
	}
	if c.Start < 0 {
		return fmt.Errorf("clip start must be non-negative, got %d", c.Start)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("clip duration must be positive, got %d", c.Duration)
	}
	if c.Track < 0 {
		return fmt.Errorf("clip track must be non-negative, got %d", c.Track)
	}
	return nil
}

// Patch carries optional field updates for a clip. The ID itself is never
// patchable.
type Patch struct {
	Start     *int      `json:"start_ms,omitempty"`
	Duration  *int      `json:"duration_ms,omitempty"`
	Track     *int      `json:"track,omitempty"`
	Label     *string   `json:"label,omitempty"`
	SourceURL *string   `json:"source_url,omitempty"`
	Kind      *ClipKind `json:"kind,omitempty"`
}

func NewID() string {
	return uuid.NewString()
}
