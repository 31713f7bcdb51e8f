package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEndpointHost(t *testing.T) {
	assert.Equal(t, "localhost:9000", endpointHost("localhost:9000"))
	assert.Equal(t, "localhost:9000", endpointHost("http://localhost:9000"))
	assert.Equal(t, "s3.amazonaws.com", endpointHost("https://s3.amazonaws.com"))
}

func TestNewTransport(t *testing.T) {
	tr := newTransport(Config{TimeoutSeconds: 5}.Timeout())
	assert.Equal(t, 5*time.Second, tr.TLSHandshakeTimeout)
	assert.Equal(t, 5*time.Second, tr.ResponseHeaderTimeout)

	assert.Equal(t, 30*time.Second, Config{}.Timeout(), "unset timeout falls back to 30s")
}
