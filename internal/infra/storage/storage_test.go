package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexilens/internal/config"
)

func TestNew_NoneDisablesArchive(t *testing.T) {
	store, err := New(context.Background(), config.Storage{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, store)

	_, err = New(context.Background(), config.Storage{Driver: "ftp"})
	assert.Error(t, err)
}

func TestObjectKeyAndContentType(t *testing.T) {
	assert.Equal(t, "documents/1/a.pdf", objectKey("/documents/", "1/a.pdf"))
	assert.Equal(t, "1/a.pdf", objectKey("", "1/a.pdf"))
	assert.Equal(t, "application/pdf", contentType("x.PDF"))
	assert.Equal(t, "application/octet-stream", contentType("x.bin"))
}

// fakeS3 keeps objects in memory and speaks just enough of the path-style API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[key] = b
		f.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Store_UploadAndRemove(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		// plain Content-Length uploads, no aws-chunked trailers
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	store := NewS3WithClient(client, "lexi", "documents")

	path := filepath.Join(t.TempDir(), "nda.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 body"), 0o600))

	key, err := store.Upload(context.Background(), path, "7/abc-nda.pdf")
	require.NoError(t, err)
	assert.Equal(t, "documents/7/abc-nda.pdf", key)

	fake.mu.Lock()
	assert.Equal(t, []byte("%PDF-1.4 body"), fake.objects["lexi/documents/7/abc-nda.pdf"])
	assert.Equal(t, "application/pdf", fake.types["lexi/documents/7/abc-nda.pdf"])
	fake.mu.Unlock()

	require.NoError(t, store.Remove(context.Background(), key))
	fake.mu.Lock()
	assert.Empty(t, fake.objects)
	fake.mu.Unlock()
}
