// Package storage resolves media references. Uploads happen client-side
// against the bucket; this service only turns stored object keys into public
// URLs and, when enabled, checks that referenced objects actually exist.
package storage

import (
	"context"
	"fmt"
	"strings"

	"helplink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type HeadClient interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type MediaStore struct {
	client  HeadClient
	bucket  string
	baseURL string
	region  string
	verify  bool
}

func NewMediaStore(client HeadClient, config *types.Config) *MediaStore {
	return &MediaStore{
		client:  client,
		bucket:  config.MediaBucket,
		baseURL: strings.TrimSuffix(config.MediaBaseURL, "/"),
		region:  config.MediaRegion,
		verify:  config.MediaVerifyRef,
	}
}

// Resolve turns a stored object key into a public URL. Keys that already
// look like absolute URLs pass through unchanged, so records written before
// key-based storage keep working.
func (m *MediaStore) Resolve(key string) string {
	if key == "" {
		return key
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}

	key = strings.TrimPrefix(key, "/")
	if m.baseURL != "" {
		return fmt.Sprintf("%s/%s", m.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.bucket, m.region, key)
}

func (m *MediaStore) ResolveAll(keys []string) []string {
	if keys == nil {
		return nil
	}

	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = m.Resolve(key)
	}
	return out
}

// VerifyRefs confirms each referenced key exists in the bucket. A missing
// object is a validation failure, not an infrastructure error. Disabled (the
// default) it accepts any key, which keeps local development off AWS.
func (m *MediaStore) VerifyRefs(ctx context.Context, keys []string) error {
	if !m.verify || m.client == nil {
		return nil
	}

	for _, key := range keys {
		if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
			continue
		}

		trimmed := strings.TrimPrefix(key, "/")
		_, err := m.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &m.bucket, Key: &trimmed})
		if err != nil {
			return types.NewValidationError(map[string]string{"media": fmt.Sprintf("引用的文件不存在: %s", key)})
		}
	}
	return nil
}
