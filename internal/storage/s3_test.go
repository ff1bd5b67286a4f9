package storage

import (
	"context"
	"errors"
	"testing"

	"helplink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHeadClient struct {
	known map[string]bool
	calls []string
}

func (f *fakeHeadClient) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.calls = append(f.calls, *params.Key)
	if f.known[*params.Key] {
		return &s3.HeadObjectOutput{}, nil
	}
	return nil, errors.New("NotFound")
}

func TestResolve(t *testing.T) {
	store := NewMediaStore(nil, &types.Config{
		MediaBucket:  "helplink-media",
		MediaBaseURL: "https://cdn.example.com/",
	})

	assert.Equal(t, "https://cdn.example.com/needs/n1/photo.jpg", store.Resolve("needs/n1/photo.jpg"))
	assert.Equal(t, "https://cdn.example.com/needs/n1/photo.jpg", store.Resolve("/needs/n1/photo.jpg"))
	assert.Equal(t, "https://elsewhere.example.com/a.jpg", store.Resolve("https://elsewhere.example.com/a.jpg"))
	assert.Equal(t, "", store.Resolve(""))
}

func TestResolveWithoutBaseURL(t *testing.T) {
	store := NewMediaStore(nil, &types.Config{
		MediaBucket: "helplink-media",
		MediaRegion: "us-east-1",
	})

	assert.Equal(t,
		"https://helplink-media.s3.us-east-1.amazonaws.com/needs/n1/photo.jpg",
		store.Resolve("needs/n1/photo.jpg"))
}

func TestResolveAll(t *testing.T) {
	store := NewMediaStore(nil, &types.Config{MediaBaseURL: "https://cdn.example.com"})

	assert.Nil(t, store.ResolveAll(nil))
	assert.Equal(t,
		[]string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		store.ResolveAll([]string{"a.jpg", "b.jpg"}))
}

func TestVerifyRefs(t *testing.T) {
	client := &fakeHeadClient{known: map[string]bool{"needs/n1/photo.jpg": true}}
	store := NewMediaStore(client, &types.Config{
		MediaBucket:    "helplink-media",
		MediaVerifyRef: true,
	})
	ctx := context.Background()

	require.NoError(t, store.VerifyRefs(ctx, []string{"needs/n1/photo.jpg"}))

	err := store.VerifyRefs(ctx, []string{"needs/n1/missing.jpg"})
	require.True(t, types.IsValidation(err))

	// Absolute URLs and empty keys are not looked up.
	require.NoError(t, store.VerifyRefs(ctx, []string{"https://cdn.example.com/a.jpg", ""}))
	assert.Equal(t, []string{"needs/n1/photo.jpg", "needs/n1/missing.jpg"}, client.calls)
}

func TestVerifyRefsDisabled(t *testing.T) {
	store := NewMediaStore(nil, &types.Config{MediaBucket: "helplink-media"})
	require.NoError(t, store.VerifyRefs(context.Background(), []string{"anything/at/all.jpg"}))
}
