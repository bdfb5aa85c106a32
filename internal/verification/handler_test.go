package verification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/verify", NewHandler(svc).Verify)
	return r
}

func TestVerifyEndpoint(t *testing.T) {
	_, svc, cert := setup(t)
	router := newRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/verify?id="+url.QueryEscape(cert.CertificateID), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Contains(t, string(body.Data), cert.CertificateID)
	// the internal record id never appears on the public path
	assert.NotContains(t, w.Body.String(), cert.ID.String())
}

func TestVerifyEndpointEmptyID(t *testing.T) {
	_, svc, _ := setup(t)
	router := newRouter(svc)

	for _, target := range []string{"/verify", "/verify?id=", "/verify?id=%20%20"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "target %s", target)
	}
}

func TestVerifyEndpointUnknownID(t *testing.T) {
	_, svc, _ := setup(t)
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/verify?id=CERT-0-zzzzzzzzz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"valid":false`))
}
