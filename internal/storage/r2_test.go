package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// recordingTransport answers every request with 200 and remembers it.
type recordingTransport struct {
	method      string
	path        string
	contentType string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.method = req.Method
	rt.path = req.URL.Path
	rt.contentType = req.Header.Get("Content-Type")
	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"ETag": {`"etag"`}},
	}, nil
}

func TestR2Client_Upload(t *testing.T) {
	rt := &recordingTransport{}
	client, err := NewR2Client(context.Background(), R2Config{
		Endpoint:      "https://r2.mock.local",
		AccessKey:     "AKIA",
		SecretKey:     "SECRET",
		Bucket:        "meals",
		PublicBaseURL: "https://cdn.family.test/",
		HTTPClient:    &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	// a non-seekable reader is buffered before signing
	url, err := client.Upload(context.Background(), "ingredients/1/photo.png",
		io.MultiReader(strings.NewReader("png-bytes")), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if url != "https://cdn.family.test/ingredients/1/photo.png" {
		t.Errorf("unexpected url %s", url)
	}
	if rt.method != http.MethodPut || rt.path != "/meals/ingredients/1/photo.png" {
		t.Errorf("unexpected request %s %s", rt.method, rt.path)
	}
	if rt.contentType != "image/png" {
		t.Errorf("unexpected content type %s", rt.contentType)
	}
}

func TestR2ConfigFromEnv(t *testing.T) {
	t.Setenv("R2_BUCKET_NAME", "")
	if _, err := R2ConfigFromEnv(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	t.Setenv("R2_BUCKET_NAME", "meals")
	t.Setenv("R2_ENDPOINT", "")
	if _, err := R2ConfigFromEnv(); err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected missing credentials error, got %v", err)
	}

	t.Setenv("R2_ENDPOINT", "https://acct.r2.cloudflarestorage.com")
	t.Setenv("R2_ACCESS_KEY", "key")
	t.Setenv("R2_SECRET_KEY", "secret")
	cfg, err := R2ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bucket != "meals" {
		t.Errorf("unexpected bucket %s", cfg.Bucket)
	}
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage("http://localhost:8080/files")

	url, err := m.Upload(context.Background(), "a/b.pdf", strings.NewReader("%PDF"), "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "http://localhost:8080/files/a/b.pdf" {
		t.Errorf("unexpected url %s", url)
	}

	obj, ok := m.Get("a/b.pdf")
	if !ok || string(obj.Data) != "%PDF" || obj.ContentType != "application/pdf" {
		t.Fatalf("unexpected object %+v", obj)
	}
}
