package cloud

import (
	"context"
	"fmt"
)

// APIError represents a non-2xx response from the studio backend.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx).
// Client errors (4xx) are considered permanent.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// GenerationService submits video generation requests and reports their
// progress. One backend job exists per project at a time.
type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateAck, error)
	Progress(ctx context.Context, projectID string) (*ProgressReport, error)
}

// ChatService classifies a free-text command into an action and returns a
// conversational reply plus the routing decision of the backend director.
type ChatService interface {
	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error)
}

// AutoEditService applies a template-driven edit (subtitles, branding) to a
// finished video.
type AutoEditService interface {
	AutoEdit(ctx context.Context, req AutoEditRequest) (*AutoEditResponse, error)
}

// AssetService uploads user media and returns a hosted URL.
type AssetService interface {
	UploadAsset(ctx context.Context, req UploadRequest) (*UploadResponse, error)
}

// Client bundles the studio backend collaborators consumed by the core.
type Client interface {
	Generation() GenerationService
	Chat() ChatService
	Editor() AutoEditService
	Assets() AssetService
}
