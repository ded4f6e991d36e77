package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/medrent/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil, nil)
		assert.ErrorContains(t, err, "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{AccessKeyID: "k", SecretAccessKey: "s"}, nil)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "docs"}, nil)
		assert.ErrorContains(t, err, "credentials are required")
	})

	t.Run("defaults", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket:          "docs",
			AccessKeyID:     "k",
			SecretAccessKey: "s",
			Endpoint:        "localhost:9000",
			UsePathStyle:    true,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "docs", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.presignTTL)
	})
}

func TestS3ObjectStorage_PresignGet(t *testing.T) {
	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:          "docs",
		AccessKeyID:     "k",
		SecretAccessKey: "s",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
		PresignTTL:      time.Minute,
	}, nil)
	require.NoError(t, err)

	// presigning is local, no request is sent
	url, expires, err := s.PresignGet(context.Background(), "patients/p1/report.pdf", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/docs/patients/p1/report.pdf?"))
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	_, _, err = s.PresignGet(context.Background(), "", 0)
	assert.ErrorIs(t, err, errEmptyKey)
}

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryObjectStorage()

	require.NoError(t, m.Put(ctx, "patients/p1/a.pdf", strings.NewReader("%PDF"), 4, "application/pdf"))
	body, ok := m.Object("patients/p1/a.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF", string(body))

	url, _, err := m.PresignGet(ctx, "patients/p1/a.pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "expires=")

	require.NoError(t, m.Delete(ctx, "patients/p1/a.pdf"))
	_, ok = m.Object("patients/p1/a.pdf")
	assert.False(t, ok)
}
