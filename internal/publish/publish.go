// Package publish uploads a results tree to Azure Blob Storage.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/ocracle/ocracle/internal/models"
)

// ConnectionStringEnv overrides credential discovery when set.
const ConnectionStringEnv = "AZURE_STORAGE_CONNECTION_STRING"

// DefaultConcurrency bounds parallel uploads.
const DefaultConcurrency = 8

// BlobUploader is the subset of *azblob.Client used for publishing.
type BlobUploader interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// NewAzureClient returns a blob client. A non-empty connection string wins;
// otherwise accountURL is used with the default Azure credential chain.
func NewAzureClient(accountURL, connectionString string) (*azblob.Client, error) {
	if connectionString != "" {
		return azblob.NewClientFromConnectionString(connectionString, nil)
	}
	if accountURL == "" {
		return nil, &models.ConfigurationError{Field: "publish.account_url", Reason: "required when " + ConnectionStringEnv + " is unset"}
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}
	return newClientWithCredential(accountURL, cred)
}

func newClientWithCredential(accountURL string, cred azcore.TokenCredential) (*azblob.Client, error) {
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client for %s: %w", accountURL, err)
	}
	return client, nil
}

// Upload describes one published file.
type Upload struct {
	Path       string
	Blob       string
	Bytes      int
	Compressed bool
}

// Publisher copies every JSON file of a results tree into a container.
type Publisher struct {
	client      BlobUploader
	container   string
	prefix      string
	gzip        bool
	concurrency int
	onUpload    func(Upload)
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrefix places blobs under prefix/.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = strings.Trim(prefix, "/")
	}
}

// WithGzip compresses each file and sets Content-Encoding: gzip.
func WithGzip(enabled bool) Option {
	return func(p *Publisher) {
		p.gzip = enabled
	}
}

// WithConcurrency bounds parallel uploads. Values below 1 use the default.
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithUploadListener is called after every successful upload, from upload goroutines.
func WithUploadListener(fn func(Upload)) Option {
	return func(p *Publisher) {
		p.onUpload = fn
	}
}

// NewPublisher creates a Publisher for container.
func NewPublisher(client BlobUploader, container string, opts ...Option) (*Publisher, error) {
	if container == "" {
		return nil, &models.ConfigurationError{Field: "publish.container", Reason: "container is required"}
	}
	p := &Publisher{client: client, container: container, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// BlobName maps a path relative to the results root onto its blob name.
func (p *Publisher) BlobName(rel string) string {
	name := filepath.ToSlash(rel)
	if p.prefix != "" {
		name = path.Join(p.prefix, name)
	}
	return name
}

// Publish uploads every .json file under root, preserving relative paths.
// Temp files left by interrupted writes are skipped. Uploads are returned sorted by blob name.
func (p *Publisher) Publish(ctx context.Context, root string) ([]Upload, error) {
	files, err := jsonFiles(root)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		uploads []Upload
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, rel := range files {
		g.Go(func() error {
			u, err := p.uploadFile(ctx, root, rel)
			if err != nil {
				return err
			}
			mu.Lock()
			uploads = append(uploads, u)
			mu.Unlock()
			if p.onUpload != nil {
				p.onUpload(u)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(uploads, func(i, j int) bool { return uploads[i].Blob < uploads[j].Blob })
	return uploads, nil
}

func (p *Publisher) uploadFile(ctx context.Context, root, rel string) (Upload, error) {
	local := filepath.Join(root, rel)
	data, err := os.ReadFile(local)
	if err != nil {
		return Upload{}, &models.DataError{Path: local, Err: err}
	}

	headers := &blob.HTTPHeaders{BlobContentType: to.Ptr("application/json")}
	if p.gzip {
		data, err = compress(data)
		if err != nil {
			return Upload{}, fmt.Errorf("compressing %s: %w", rel, err)
		}
		headers.BlobContentEncoding = to.Ptr("gzip")
	}

	name := p.BlobName(rel)
	if _, err := p.client.UploadBuffer(ctx, p.container, name, data, &azblob.UploadBufferOptions{HTTPHeaders: headers}); err != nil {
		return Upload{}, fmt.Errorf("uploading %s: %w", name, err)
	}
	slog.Debug("Uploaded result file", "blob", name, "bytes", len(data), "gzip", p.gzip)
	return Upload{Path: local, Blob: name, Bytes: len(data), Compressed: p.gzip}, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// jsonFiles lists .json files below root as OS-relative paths.
func jsonFiles(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.ConfigurationError{Field: "paths.results", Reason: "results directory does not exist", Err: err}
		}
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || filepath.Ext(d.Name()) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}
