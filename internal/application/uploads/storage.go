package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// signedURLTTL is how long an upload URL stays valid, in seconds.
const signedURLTTL = 3600

// Storage issues signed upload URLs for object storage.
type Storage interface {
	CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error)
}

// SupabaseStorage is a Storage backed by the Supabase storage HTTP API.
type SupabaseStorage struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

func NewSupabaseStorage(baseURL, secretKey string, timeout time.Duration) *SupabaseStorage {
	return &SupabaseStorage{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		SecretKey: secretKey,
		Client:    &http.Client{Timeout: timeout},
	}
}

type signedUploadResponse struct {
	SignedURL      string `json:"signedUrl"`
	SignedURLSnake string `json:"signed_url"`
	URL            string `json:"url"`
}

func (s *SupabaseStorage) CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("supabase: SUPABASE_URL is not set")
	}
	if s.SecretKey == "" {
		return "", fmt.Errorf("supabase: SUPABASE_SECRET_KEY is not set")
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	url := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s", s.BaseURL, bucket, path)
	body, _ := json.Marshal(map[string]interface{}{"expiresIn": signedURLTTL, "upsert": false})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", s.SecretKey)
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("supabase error: status %d body: %s", resp.StatusCode, raw)
	}
	var data signedUploadResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("supabase response decode: %w", err)
	}
	switch {
	case data.SignedURL != "":
		return data.SignedURL, nil
	case data.SignedURLSnake != "":
		return data.SignedURLSnake, nil
	case data.URL != "":
		// Relative to the storage API root.
		u := data.URL
		if !strings.HasPrefix(u, "/") {
			u = "/" + u
		}
		if !strings.HasPrefix(u, "/storage/v1") {
			u = "/storage/v1" + u
		}
		return s.BaseURL + u, nil
	}
	return "", fmt.Errorf("supabase returned no signed URL, body: %s", raw)
}
