package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string][]byte
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	fake := newFakeObjects()
	s := newS3Store(fake, "calendar", "")
	ctx := context.Background()

	at := time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC)
	e := &models.Event{ID: "e1", Title: "Open house", DepartmentID: "d1", StartDate: "2023-03-01", EndDate: "2023-03-01"}
	require.NoError(t, s.Put(ctx, &models.ArchivedEvent{Event: e, ArchivedAt: at}))

	_, ok := fake.objects["calendar/archived_events/e1.json"]
	require.True(t, ok)

	got, err := s.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Open house", got.Event.Title)
	assert.Equal(t, "2023-03-01", got.Event.StartDate)
	assert.True(t, got.Event.IsArchived)
	assert.True(t, at.Equal(got.ArchivedAt))

	require.NoError(t, s.Delete(ctx, "e1"))
	require.NoError(t, s.Delete(ctx, "e1"))
	_, err = s.Get(ctx, "e1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Store_PutError(t *testing.T) {
	fake := newFakeObjects()
	fake.putErr = errors.New("access denied")
	s := newS3Store(fake, "calendar", "old")

	err := s.Put(context.Background(), &models.ArchivedEvent{Event: &models.Event{ID: "e1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put archived event e1")
	assert.Equal(t, "old/e1.json", s.key("e1"))
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}
	defer func() { loadDefaultAWSConfig = orig }()

	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1", Bucket: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load aws config")
}

func TestNewS3Store_UsesEndpoint(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}
	var endpoint string
	var pathStyle bool
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		o := s3.Options{}
		for _, fn := range optFns {
			fn(&o)
		}
		endpoint = aws.ToString(o.BaseEndpoint)
		pathStyle = o.UsePathStyle
		return s3.New(o)
	}
	defer func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew }()

	s, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1", Endpoint: "http://minio:9000", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", endpoint)
	assert.True(t, pathStyle)
	assert.Equal(t, DefaultPrefix, s.prefix)
}
