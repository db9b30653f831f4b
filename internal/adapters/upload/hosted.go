// Package upload stores staged event images, either with the hosted upload
// service over HTTP or on local disk for development.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"evently/internal/domain"
)

const defaultTimeout = 30 * time.Second

// HostedClient uploads files to the hosted upload service.
type HostedClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHostedClient returns an uploader that posts files as multipart/form-data to
// endpoint and reads back a JSON array of stored assets.
func NewHostedClient(endpoint, apiKey string, client *http.Client) *HostedClient {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HostedClient{endpoint: endpoint, apiKey: apiKey, client: client}
}

func (c *HostedClient) Upload(ctx context.Context, files []domain.StagedFile) ([]domain.UploadedAsset, error) {
	if len(files) == 0 {
		return nil, nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		h.Set("Content-Type", contentType(f))
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create multipart part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write multipart part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach upload service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upload service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var assets []domain.UploadedAsset
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return assets, nil
}

func contentType(f domain.StagedFile) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return http.DetectContentType(f.Data)
}
