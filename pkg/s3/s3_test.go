package s3

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/drivingschool_backend/config"
)

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), config.S3Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNew_WithEndpoint(t *testing.T) {
	c, err := New(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		Bucket:          "careers",
	})
	require.NoError(t, err)

	url, err := c.PresignDownload(context.Background(), "cv/2026/01/x.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/careers/cv/2026/01/x.pdf"))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/cv/", "My Resume.PDF", time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "cv/2026/03/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
}
