package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
}

// fakeS3 accepts every request and records what it saw
func fakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, ContentType: r.Header.Get("Content-Type")})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func testConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:      true,
		Endpoint:     endpoint,
		Bucket:       "billing-assets",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}
}

func TestNewS3Storage_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  *config.StorageConfig
		msg  string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
		{"bad endpoint", &config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s", Endpoint: "http://"}, "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Storage(ctx, tt.cfg, zap.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	s, err := NewS3Storage(ctx, testConfig(""), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "billing-assets", s.Bucket())
	assert.Equal(t, defaultPresignExpiration, s.presignExpiration)
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("minio:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", got)

	got, err = normalizeEndpoint("s3.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", got)
}

func TestS3Storage_GenerateDownloadURL(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3Storage(ctx, testConfig("http://localhost:9000"), zap.NewNop())
	require.NoError(t, err)

	_, _, err = s.GenerateDownloadURL(ctx, "", 0)
	assert.Error(t, err)

	before := time.Now()
	raw, expiresAt, err := s.GenerateDownloadURL(ctx, "logos/company-1.png", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(defaultPresignExpiration), expiresAt, 5*time.Second)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/billing-assets/logos/company-1.png", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	raw, _, err = s.GenerateDownloadURL(ctx, "logos/company-1.png", time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
}

func TestS3Storage_UploadAndDelete(t *testing.T) {
	ctx := context.Background()
	srv, requests := fakeS3(t)
	s, err := NewS3Storage(ctx, testConfig(srv.URL), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.Upload(ctx, "logos/company-1.png", []byte("\x89PNG"), "image/png"))
	require.NoError(t, s.DeleteObject(ctx, "logos/company-1.png"))
	assert.Error(t, s.Upload(ctx, "", nil, "image/png"))
	assert.Error(t, s.DeleteObject(ctx, ""))

	got := requests()
	require.Len(t, got, 3)
	assert.Equal(t, http.MethodHead, got[0].Method)
	assert.Equal(t, "/billing-assets", strings.TrimSuffix(got[0].Path, "/"))
	assert.Equal(t, http.MethodPut, got[1].Method)
	assert.Equal(t, "/billing-assets/logos/company-1.png", got[1].Path)
	assert.Equal(t, "image/png", got[1].ContentType)
	assert.Equal(t, http.MethodDelete, got[2].Method)
}
