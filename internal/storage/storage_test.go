package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey_Extension(t *testing.T) {
	assert.Regexp(t, `^[0-9a-f-]{36}\.png$`, NewKey("image/png"))
	assert.Regexp(t, `\.jpg$`, NewKey(""))
	assert.Equal(t, ".webp", ExtFor("image/webp"))
	assert.Equal(t, "image/png", ContentTypeFor("a.PNG"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("a.bin"))
}

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir()+"/uploads", "http://example.com/")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "a.jpg", "image/jpeg", []byte("data")))
	rc, err := s.Open(ctx, "a.jpg")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "data", string(b))

	u, err := s.URL(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/files/a.jpg", u)

	require.NoError(t, s.Delete(ctx, "a.jpg"))
	require.NoError(t, s.Delete(ctx, "a.jpg"), "second delete is a no-op")
	_, err = s.Open(ctx, "a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	for _, key := range []string{"", "../x.jpg", "a/b.jpg", ".env", `..\x`} {
		_, err := s.Open(context.Background(), key)
		assert.ErrorIs(t, err, ErrBadKey, key)
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = b
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://" + aws.ToString(in.Bucket) + ".s3/" + aws.ToString(in.Key) + "?sig"}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s := &S3Store{client: fake, presign: fakePresigner{}, bucket: "closet"}

	require.NoError(t, s.Save(ctx, "k.png", "image/png", []byte("png")))
	assert.Equal(t, "image/png", fake.types["k.png"])

	rc, err := s.Open(ctx, "k.png")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "png", string(b))

	u, err := s.URL(ctx, "k.png")
	require.NoError(t, err)
	assert.Equal(t, "https://closet.s3/k.png?sig", u)

	require.NoError(t, s.Delete(ctx, "k.png"))
	_, err = s.Open(ctx, "k.png")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Save(ctx, "../k", "", nil), ErrBadKey)
}
