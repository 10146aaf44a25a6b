package utils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploader(t *testing.T) {
	dir := t.TempDir()
	up, err := NewLocalUploader(dir, "/uploads/")
	require.NoError(t, err)

	url, err := up.Upload(context.Background(), "stylars/1/a.png", strings.NewReader("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/stylars/1/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "stylars", "1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))
}

func TestSafeJoinRejectsTraversal(t *testing.T) {
	_, err := SafeJoin("/srv/uploads", "../etc/passwd")
	assert.Error(t, err)

	p, err := SafeJoin("/srv/uploads", "stylars/x.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/uploads", "stylars", "x.png"), p)
}

type recordingPutter struct {
	input *s3.PutObjectInput
}

func (r *recordingPutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	r.input = in
	return &s3.PutObjectOutput{}, nil
}

func TestR2UploaderBuildsCDNURL(t *testing.T) {
	rec := &recordingPutter{}
	up := &R2Uploader{Client: rec, Bucket: "stylars", CDNBaseURL: "https://cdn.example.com"}

	url, err := up.Upload(context.Background(), "stylars/2/x.webp", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/stylars/2/x.webp", url)
	assert.Equal(t, "stylars", aws.ToString(rec.input.Bucket))
	assert.Equal(t, "application/octet-stream", aws.ToString(rec.input.ContentType))
}
