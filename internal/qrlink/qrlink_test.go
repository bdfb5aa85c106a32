package qrlink

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink(t *testing.T) {
	link := Link("https://certs.example.com/verify", "CERT-1700000000000-abc123xyz")
	assert.Equal(t, "https://certs.example.com/verify?id=CERT-1700000000000-abc123xyz", link)

	// certificate ids survive URL parsing unchanged
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "CERT-1700000000000-abc123xyz", u.Query().Get("id"))
}

func TestPNG(t *testing.T) {
	png, err := PNG("https://certs.example.com/verify", "CERT-1700000000000-abc123xyz")
	require.NoError(t, err)
	require.True(t, len(png) > 8)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}
