package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// maxDocumentBytes caps remote reads; the dataset is a small static document.
const maxDocumentBytes = 8 << 20

type fileFetcher struct{}

func (fileFetcher) Fetch(_ context.Context, src *url.URL) ([]byte, error) {
	p := src.Path
	if src.Host != "" {
		p = src.Host + p
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

type httpFetcher struct {
	client *http.Client
}

func (f *httpFetcher) Fetch(ctx context.Context, src *url.URL) ([]byte, error) {
	client := f.client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}
	return readCapped(resp.Body)
}

// S3Options configures the S3-compatible object store used for s3:// sources.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

type s3Fetcher struct {
	opts S3Options

	once   sync.Once
	client *minio.Client
	err    error
}

// WithS3 enables s3://bucket/key sources against an S3-compatible endpoint.
func WithS3(opts S3Options) Option {
	return WithFetcher("s3", &s3Fetcher{opts: opts})
}

func (f *s3Fetcher) init() {
	if strings.TrimSpace(f.opts.Endpoint) == "" {
		f.err = errors.New("s3: endpoint not configured")
		return
	}
	var creds *credentials.Credentials
	if f.opts.AccessKey != "" || f.opts.SecretKey != "" {
		creds = credentials.NewStaticV4(f.opts.AccessKey, f.opts.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}
	f.client, f.err = minio.New(f.opts.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: f.opts.UseSSL,
		Region: f.opts.Region,
	})
	if f.err != nil {
		f.err = fmt.Errorf("s3: create client: %w", f.err)
	}
}

func (f *s3Fetcher) Fetch(ctx context.Context, src *url.URL) ([]byte, error) {
	f.once.Do(f.init)
	if f.err != nil {
		return nil, f.err
	}
	bucket, key, err := bucketAndKey(src)
	if err != nil {
		return nil, err
	}
	obj, err := f.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3: get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()
	return readCapped(obj)
}

type gcsFetcher struct {
	once   sync.Once
	client *storage.Client
	err    error
}

// WithGCS enables gs://bucket/object sources. A nil client is created lazily from
// application default credentials on first use.
func WithGCS(client *storage.Client) Option {
	return WithFetcher("gs", &gcsFetcher{client: client})
}

func (f *gcsFetcher) Fetch(ctx context.Context, src *url.URL) ([]byte, error) {
	f.once.Do(func() {
		if f.client == nil {
			f.client, f.err = storage.NewClient(ctx)
			if f.err != nil {
				f.err = fmt.Errorf("gcs: create client: %w", f.err)
			}
		}
	})
	if f.err != nil {
		return nil, f.err
	}
	bucket, object, err := bucketAndKey(src)
	if err != nil {
		return nil, err
	}
	r, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: open %s/%s: %w", bucket, object, err)
	}
	defer r.Close()
	return readCapped(r)
}

func bucketAndKey(src *url.URL) (string, string, error) {
	bucket := src.Host
	key := strings.TrimPrefix(src.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("source %q must name a bucket and an object", src.String())
	}
	return bucket, key, nil
}

func readCapped(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(b) > maxDocumentBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDocumentBytes)
	}
	return b, nil
}
