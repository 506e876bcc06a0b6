package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// MaxUploadBytes bounds asset payloads before any network call.
const MaxUploadBytes = 50 * 1024 * 1024

var ErrValidation = errors.New("invalid upload")

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/gif":       true,
	"video/mp4":       true,
	"video/quicktime": true,
	"audio/mpeg":      true,
	"audio/wav":       true,
}

// ValidateUpload checks MIME type and size locally. Rejection happens before
// the request is built; the backend never sees an invalid payload.
func ValidateUpload(req UploadRequest) error {
	if req.Filename == "" {
		return fmt.Errorf("%w: filename is required", ErrValidation)
	}
	if !allowedContentTypes[req.ContentType] {
		return fmt.Errorf("%w: unsupported content type %q", ErrValidation, req.ContentType)
	}
	if len(req.Data) == 0 {
		return fmt.Errorf("%w: empty file", ErrValidation)
	}
	if len(req.Data) > MaxUploadBytes {
		return fmt.Errorf("%w: file is %d bytes, limit is %d", ErrValidation, len(req.Data), MaxUploadBytes)
	}
	return nil
}

func (c *HTTPClient) UploadAsset(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	if err := ValidateUpload(req); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("write multipart body: %w", err)
	}
	if err := writer.WriteField("content_type", req.ContentType); err != nil {
		return nil, fmt.Errorf("write multipart field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	endpoint := "/api/assets/upload"
	httpReq, err := c.newRequest(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.logger.Info("asset uploaded",
		"filename", req.Filename,
		"content_type", req.ContentType,
		"bytes", len(req.Data),
	)
	return &result, nil
}
