package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udelar-dtx/dtx_backend/config"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(config.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestKeyUsesPrefix(t *testing.T) {
	c, err := New(config.S3Config{Region: "us-east-1", Bucket: "trial", Prefix: "exports"})
	require.NoError(t, err)
	assert.Equal(t, "exports/registro.xlsx", c.Key("registro.xlsx"))

	bare, err := New(config.S3Config{Region: "us-east-1", Bucket: "trial"})
	require.NoError(t, err)
	assert.Equal(t, "registro.xlsx", bare.Key("registro.xlsx"))
}

func TestPresignDownloadIsOffline(t *testing.T) {
	c, err := New(config.S3Config{
		Endpoint:        "http://127.0.0.1:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		Bucket:          "trial",
		PresignTTLSec:   60,
	})
	require.NoError(t, err)

	url, err := c.PresignDownload(context.Background(), "exports/registro.xlsx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:9000/trial/exports/registro.xlsx?"), url)
	assert.Contains(t, url, "X-Amz-Expires=60")
}

func TestAttachmentUsesBaseName(t *testing.T) {
	assert.Equal(t, `attachment; filename=registro.xlsx`, attachment("exports/registro.xlsx"))
}
