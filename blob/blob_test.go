package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a/b.jpg", S3Config{PublicBaseURL: "https://cdn.example.com/"}.ObjectURL("a/b.jpg"))
	assert.Equal(t, "http://localhost:9000/photos/a.jpg", S3Config{Endpoint: "http://localhost:9000", Bucket: "photos"}.ObjectURL("a.jpg"))
	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/a.jpg", S3Config{Bucket: "photos", Region: "eu-west-1"}.ObjectURL("a.jpg"))
}

func TestNewKey(t *testing.T) {
	key := NewKey("memories", ".jpg", time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "memories/2024/02/14/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
}

type fakePut struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePut) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.err
}

func TestPut(t *testing.T) {
	api := &fakePut{}
	cfg := S3Config{Bucket: "b", PublicBaseURL: "https://cdn.example.com"}
	url, err := Put(context.Background(), api, cfg, "k.jpg", "image/jpeg", strings.NewReader("data"), 4)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k.jpg", url)
	assert.Equal(t, "b", aws.ToString(api.in.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(api.in.ContentType))
	assert.Equal(t, "data", api.body)

	api.err = errors.New("denied")
	_, err = Put(context.Background(), api, cfg, "k.jpg", "image/jpeg", strings.NewReader("data"), 4)
	assert.ErrorContains(t, err, "denied")
}
