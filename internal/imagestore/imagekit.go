// Package imagestore talks to the external image storage service. The core
// only ever stores the returned URL and file id on its own records; hosting,
// resizing and delivery belong to the provider.
package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// UploadResult is the provider's handle for a stored image
type UploadResult struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
}

// Client uploads and deletes binary images by provider file id
type Client interface {
	Upload(ctx context.Context, fileName, folder string, data []byte) (*UploadResult, error)
	Delete(ctx context.Context, fileID string) error
}

// ImageKitClient implements Client against the ImageKit REST API
type ImageKitClient struct {
	uploadURL  string
	apiURL     string
	privateKey string
	httpClient *http.Client
}

func NewImageKitClient(privateKey string) *ImageKitClient {
	return &ImageKitClient{
		uploadURL:  "https://upload.imagekit.io/api/v1/files/upload",
		apiURL:     "https://api.imagekit.io/v1",
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *ImageKitClient) Upload(ctx context.Context, fileName, folder string, data []byte) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	_ = writer.WriteField("fileName", fileName)
	_ = writer.WriteField("folder", folder)
	_ = writer.WriteField("useUniqueFileName", "true")
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("image upload failed with status %d: %s", resp.StatusCode, msg)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}

func (c *ImageKitClient) Delete(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiURL+"/files/"+fileID, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("image delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image delete failed with status %d", resp.StatusCode)
	}
	return nil
}
