package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocracle/ocracle/internal/models"
)

type uploadCall struct {
	container string
	name      string
	data      []byte
	opts      *azblob.UploadBufferOptions
}

type fakeUploader struct {
	mu    sync.Mutex
	calls []uploadCall
	fail  string
}

func (f *fakeUploader) UploadBuffer(_ context.Context, container, name string, data []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == f.fail {
		return azblob.UploadBufferResponse{}, errors.New("403 forbidden")
	}
	f.calls = append(f.calls, uploadCall{container: container, name: name, data: append([]byte(nil), data...), opts: o})
	return azblob.UploadBufferResponse{}, nil
}

func (f *fakeUploader) byName() map[string]uploadCall {
	out := map[string]uploadCall{}
	for _, c := range f.calls {
		out[c.name] = c
	}
	return out
}

func resultsTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"manifest.json":             `{"files":[]}`,
		"latin/a.json":              `{"A":{}}`,
		"latin/a/00001.bin.json":    `{"A":{"gt":"x"}}`,
		"latin/a/.00002.json.1.tmp": "partial",
		"latin/a/notes.txt":         "ignored",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestPublish(t *testing.T) {
	root := resultsTree(t)
	fake := &fakeUploader{}
	var seen int
	var mu sync.Mutex

	p, err := NewPublisher(fake, "results", WithPrefix("/runs/2025/"), WithUploadListener(func(Upload) {
		mu.Lock()
		seen++
		mu.Unlock()
	}))
	require.NoError(t, err)

	uploads, err := p.Publish(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, uploads, 3)
	assert.Equal(t, "runs/2025/latin/a.json", uploads[0].Blob)
	assert.Equal(t, "runs/2025/latin/a/00001.bin.json", uploads[1].Blob)
	assert.Equal(t, "runs/2025/manifest.json", uploads[2].Blob)
	assert.Equal(t, 3, seen)

	calls := fake.byName()
	c := calls["runs/2025/manifest.json"]
	assert.Equal(t, "results", c.container)
	assert.Equal(t, `{"files":[]}`, string(c.data))
	require.NotNil(t, c.opts.HTTPHeaders)
	assert.Equal(t, "application/json", *c.opts.HTTPHeaders.BlobContentType)
	assert.Nil(t, c.opts.HTTPHeaders.BlobContentEncoding)
}

func TestPublish_Gzip(t *testing.T) {
	root := resultsTree(t)
	fake := &fakeUploader{}
	p, err := NewPublisher(fake, "results", WithGzip(true), WithConcurrency(1))
	require.NoError(t, err)

	uploads, err := p.Publish(context.Background(), root)
	require.NoError(t, err)
	for _, u := range uploads {
		assert.True(t, u.Compressed)
	}

	c := fake.byName()["latin/a/00001.bin.json"]
	assert.Equal(t, "gzip", *c.opts.HTTPHeaders.BlobContentEncoding)

	zr, err := gzip.NewReader(bytes.NewReader(c.data))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"A":{"gt":"x"}}`, string(plain))
}

func TestPublish_UploadError(t *testing.T) {
	root := resultsTree(t)
	p, err := NewPublisher(&fakeUploader{fail: "manifest.json"}, "results")
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploading manifest.json")
}

func TestPublish_MissingRoot(t *testing.T) {
	p, err := NewPublisher(&fakeUploader{}, "results")
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), filepath.Join(t.TempDir(), "nope"))
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewPublisher_RequiresContainer(t *testing.T) {
	_, err := NewPublisher(&fakeUploader{}, "")
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewAzureClient_RequiresAccountURL(t *testing.T) {
	_, err := NewAzureClient("", "")
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
