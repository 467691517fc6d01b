// Package storage mediates all access to the S3-compatible object store.
// Every call goes through the retry executor and returns typed errors.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/mediaforge/mediaforge/config"
	"github.com/mediaforge/mediaforge/internal/logger"
	"github.com/mediaforge/mediaforge/internal/retry"
)

const (
	maxAttempts      = 4
	baseDelay        = 500 * time.Millisecond
	maxCollisionTries = 100
)

// ObjectKind distinguishes files from directory prefixes in listings
type ObjectKind string

// Object kinds
const (
	ObjectKindFile      ObjectKind = "file"
	ObjectKindDirectory ObjectKind = "directory"
)

// Object describes one entry in a listing
type Object struct {
	Key          string     `json:"key"`
	Size         int64      `json:"size"`
	LastModified time.Time  `json:"last_modified"`
	Kind         ObjectKind `json:"kind"`
	Extension    string     `json:"extension,omitempty"`
}

// UploadResult is returned by Upload. StoreRelativePath is the object key
// without any mount prefix, usable by downstream compute calls.
type UploadResult struct {
	ExternalURL       string `json:"external_url"`
	StoreRelativePath string `json:"store_relative_path"`
}

// Client provides object store operations against a single bucket.
// One client is constructed per credentials set and shared by reference.
type Client struct {
	api      s3iface.S3API
	uploader *s3manager.Uploader
	bucket   string
	endpoint string
	exec     *retry.Executor
}

// NewClient builds a client from validated settings.
func NewClient(cfg *config.ObjectStoreConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid object store configuration: %w", err)
	}

	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
		HTTPClient:       &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store session: %w", err)
	}

	api := s3.New(sess)
	return &Client{
		api:      api,
		uploader: s3manager.NewUploaderWithClient(api),
		bucket:   cfg.Bucket,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		exec:     retry.New(maxAttempts, baseDelay).WithClassifier(retryable),
	}, nil
}

// NewClientWithAPI builds a client around an existing S3 API implementation.
// Used by tests to substitute a fake store.
func NewClientWithAPI(api s3iface.S3API, bucket, endpoint string) *Client {
	return &Client{
		api:      api,
		uploader: s3manager.NewUploaderWithClient(api),
		bucket:   bucket,
		endpoint: strings.TrimRight(endpoint, "/"),
		exec:     retry.New(maxAttempts, baseDelay).WithClassifier(retryable).WithSleep(func(time.Duration) {}),
	}
}

// List returns the direct children of prefix, directories first. Items whose
// key equals the prefix itself, or that sit more than one segment below it,
// are excluded.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	normalized := NormalizePath(prefix)
	if normalized != "" && !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	out, err := retry.DoValue(ctx, c.exec, "list-objects", func() (*s3.ListObjectsV2Output, error) {
		return c.api.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
			Bucket:    aws.String(c.bucket),
			Prefix:    aws.String(normalized),
			Delimiter: aws.String("/"),
		})
	})
	if err != nil {
		return nil, wrap("list", err)
	}

	var dirs, files []Object
	for _, cp := range out.CommonPrefixes {
		key := aws.StringValue(cp.Prefix)
		if key == normalized {
			continue
		}
		dirs = append(dirs, Object{
			Key:  strings.TrimSuffix(key, "/"),
			Kind: ObjectKindDirectory,
		})
	}
	for _, obj := range out.Contents {
		key := aws.StringValue(obj.Key)
		if key == normalized {
			continue
		}
		remainder := strings.TrimPrefix(key, normalized)
		if remainder == "" || strings.Contains(strings.TrimSuffix(remainder, "/"), "/") {
			continue
		}
		if strings.HasSuffix(key, "/") {
			// Folder marker object.
			dirs = append(dirs, Object{Key: strings.TrimSuffix(key, "/"), Kind: ObjectKindDirectory})
			continue
		}
		files = append(files, Object{
			Key:          key,
			Size:         aws.Int64Value(obj.Size),
			LastModified: aws.TimeValue(obj.LastModified),
			Kind:         ObjectKindFile,
			Extension:    extensionOf(key),
		})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Key < dirs[j].Key })
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })

	return append(dirs, files...), nil
}

// Upload stores data under destPath using the sanitized file name. Existing
// keys are never overwritten; a numeric suffix is appended until a free key
// is found.
func (c *Client) Upload(ctx context.Context, data []byte, fileName, contentType, destPath string) (*UploadResult, error) {
	if fileName == "" {
		return nil, wrap("upload", fmt.Errorf("file name is required"))
	}

	key, err := c.resolveKey(ctx, destPath, SanitizeFileName(fileName))
	if err != nil {
		return nil, err
	}

	err = c.exec.Do(ctx, "upload-object", func() error {
		_, uploadErr := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(c.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		return uploadErr
	})
	if err != nil {
		return nil, wrap("upload", err)
	}

	logger.InfoWithFields("uploaded object", map[string]interface{}{
		"key":  key,
		"size": len(data),
	})

	return &UploadResult{
		ExternalURL:       fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key),
		StoreRelativePath: key,
	}, nil
}

// Download fetches the object at key.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	buf := aws.NewWriteAtBuffer(nil)
	downloader := s3manager.NewDownloaderWithClient(c.api)

	err := c.exec.Do(ctx, "download-object", func() error {
		_, dlErr := downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(NormalizePath(key)),
		})
		return dlErr
	})
	if err != nil {
		return nil, wrap("download", err)
	}
	return buf.Bytes(), nil
}

// Delete removes the object at key. A missing object surfaces as a typed
// not-found error rather than being swallowed, so callers with independent
// knowledge of the object can decide whether that counts as success.
func (c *Client) Delete(ctx context.Context, key string) error {
	normalized := NormalizePath(key)

	err := c.exec.Do(ctx, "delete-object", func() error {
		// DeleteObject succeeds silently on missing keys, so existence is
		// checked first to give callers the raw not-found outcome.
		_, headErr := c.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(normalized),
		})
		if headErr != nil {
			return headErr
		}
		_, delErr := c.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(normalized),
		})
		return delErr
	})
	if err != nil {
		return wrap("delete", err)
	}

	logger.Debugf("deleted object %q", normalized)
	return nil
}

// CreateFolder writes a zero-byte marker object so an otherwise empty prefix
// shows up in listings.
func (c *Client) CreateFolder(ctx context.Context, folderPath string) error {
	normalized := NormalizePath(folderPath)
	if normalized == "" {
		return wrap("create-folder", fmt.Errorf("folder path is required"))
	}

	err := c.exec.Do(ctx, "create-folder", func() error {
		_, putErr := c.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(c.bucket),
			Key:           aws.String(normalized + "/"),
			Body:          bytes.NewReader(nil),
			ContentLength: aws.Int64(0),
		})
		return putErr
	})
	if err != nil {
		return wrap("create-folder", err)
	}
	return nil
}

// resolveKey joins destPath and fileName and appends _1, _2, ... while the
// resulting key is already taken.
func (c *Client) resolveKey(ctx context.Context, destPath, fileName string) (string, error) {
	dir := NormalizePath(destPath)
	base := fileName
	ext := ""
	if idx := strings.LastIndex(fileName, "."); idx > 0 {
		base = fileName[:idx]
		ext = fileName[idx:]
	}

	for i := 0; i < maxCollisionTries; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		key := name + ext
		if dir != "" {
			key = dir + "/" + key
		}

		exists, err := c.exists(ctx, key)
		if err != nil {
			return "", err
		}
		if !exists {
			return key, nil
		}
	}

	return "", wrap("upload", fmt.Errorf("could not find a free key for %q under %q", fileName, destPath))
}

func (c *Client) exists(ctx context.Context, key string) (bool, error) {
	err := c.exec.Do(ctx, "head-object", func() error {
		_, headErr := c.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		return headErr
	})
	if err == nil {
		return true, nil
	}
	if classify(err) == KindNotFound {
		return false, nil
	}
	return false, wrap("head", err)
}

var (
	invalidChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	repeats      = regexp.MustCompile(`_+`)
)

// SanitizeFileName reduces a user-supplied file name to [a-zA-Z0-9._-],
// collapsing runs of invalid characters and trimming underscore edges.
func SanitizeFileName(name string) string {
	sanitized := invalidChars.ReplaceAllString(name, "_")
	sanitized = repeats.ReplaceAllString(sanitized, "_")
	return strings.Trim(sanitized, "_")
}

// NormalizePath trims slashes and collapses duplicate separators so keys are
// always store-relative.
func NormalizePath(p string) string {
	parts := strings.Split(p, "/")
	cleaned := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		cleaned = append(cleaned, part)
	}
	return strings.Join(cleaned, "/")
}

func extensionOf(key string) string {
	name := key
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return strings.ToLower(name[idx+1:])
	}
	return ""
}
