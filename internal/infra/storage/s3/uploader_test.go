package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient(Options{Bucket: "photos"}, nil)
	assert.Error(t, err)
	_, err = NewClient(Options{Endpoint: "http://localhost:9000"}, nil)
	assert.Error(t, err)

	c, err := NewClient(Options{Endpoint: "http://localhost:9000", Bucket: "photos", AccessKey: "k", SecretKey: "s"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", c.publicBaseURL)
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/photos/listings/a/b.jpg",
		ObjectURL("https://cdn.example.com/", "photos", "/listings/a/b.jpg"))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "localhost:9000", hostOf("http://localhost:9000"))
	assert.Equal(t, "minio:9000", hostOf("minio:9000"))
}
