package state

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wbwatch/errors"
)

// fakeBucket serves GetObject from and records Upload into a map
type fakeBucket struct {
	objects map[string][]byte
	getErr  error
}

func (b *fakeBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	data, ok := b.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (b *fakeBucket) Upload(ctx context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.objects[aws.ToString(in.Key)] = data
	return &manager.UploadOutput{Location: "s3://" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
}

func TestS3Mirror_UploadThenRestore(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}}
	mirror := NewS3MirrorWithClient(bucket, bucket, "wb-state", "wbwatch/state", nil)

	src := t.TempDir()
	projects := filepath.Join(src, "processed_projects.json")
	require.NoError(t, os.WriteFile(projects, []byte(`{"P100":"2024-01-01"}`), 0o600))
	missing := filepath.Join(src, "processed_awards.json")

	require.NoError(t, mirror.Upload(context.Background(), []string{projects, missing}))
	assert.Contains(t, bucket.objects, "wbwatch/state/processed_projects.json")
	assert.Len(t, bucket.objects, 1)

	dst := t.TempDir()
	restored := filepath.Join(dst, "processed_projects.json")
	notRemote := filepath.Join(dst, "processed_awards.json")
	require.NoError(t, mirror.Restore(context.Background(), []string{restored, notRemote}))

	data, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, `{"P100":"2024-01-01"}`, string(data))
	_, err = os.Stat(notRemote)
	assert.True(t, os.IsNotExist(err))
}

func TestS3Mirror_RestoreReportsFailures(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}, getErr: errors.New("AccessDenied")}
	mirror := NewS3MirrorWithClient(bucket, bucket, "wb-state", "", nil)

	err := mirror.Restore(context.Background(), []string{filepath.Join(t.TempDir(), "monitor_state.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestS3Mirror_Key(t *testing.T) {
	mirror := NewS3MirrorWithClient(nil, nil, "b", "prefix/", nil)
	assert.Equal(t, "prefix/monitor_state.json", mirror.Key("/var/lib/wbwatch/monitor_state.json"))
}
