package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/pkg/kv"
)

func newRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.New(kv.NewMemory(), nil)
	require.NoError(t, st.Load(context.Background()))

	h := NewHandler(st, nil, nil)
	r := gin.New()
	r.GET("/templates", h.List)
	r.GET("/templates/defaults", h.Defaults)
	r.POST("/templates", h.Create)
	r.GET("/templates/:id", h.GetByID)
	r.PUT("/templates/:id", h.Update)
	r.DELETE("/templates/:id", h.Delete)
	r.POST("/templates/:id/background", h.UploadBackground)
	return r, st
}

func doJSON(t *testing.T, r *gin.Engine, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTemplate(t *testing.T) {
	r, st := newRouter(t)

	w := doJSON(t, r, http.MethodPost, "/templates", SaveRequest{Name: "Gold Border", BackgroundColor: "#fffbe6"})
	require.Equal(t, http.StatusCreated, w.Code)

	list := st.Templates()
	require.Len(t, list, 1)
	assert.Equal(t, "Gold Border", list[0].Name)
	assert.Equal(t, models.SizeA4, list[0].Size, "size defaults to A4")
	assert.Equal(t, models.OrientationLandscape, list[0].Orientation)
}

func TestCreateTemplateMissingName(t *testing.T) {
	r, st := newRouter(t)

	w := doJSON(t, r, http.MethodPost, "/templates", map[string]string{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, st.Templates())
}

func TestCreateTemplateRejectsBadEnums(t *testing.T) {
	r, _ := newRouter(t)

	w := doJSON(t, r, http.MethodPost, "/templates", map[string]string{"name": "x", "size": "A0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/templates", map[string]string{"name": "x", "orientation": "diagonal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTemplate(t *testing.T) {
	r, st := newRouter(t)

	saved, err := st.SaveTemplate(context.Background(), models.Template{Name: "Original"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPut, "/templates/"+saved.ID.String(), SaveRequest{Name: "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)

	got, ok := st.TemplateByID(saved.ID)
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, saved.CreatedAt, got.CreatedAt)
	assert.Len(t, st.Templates(), 1)
}

func TestUpdateUnknownTemplate(t *testing.T) {
	r, _ := newRouter(t)

	w := doJSON(t, r, http.MethodPut, "/templates/1b4e28ba-2fa1-11d2-883f-0016d3cca427", SaveRequest{Name: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTemplate(t *testing.T) {
	r, st := newRouter(t)

	saved, err := st.SaveTemplate(context.Background(), models.Template{Name: "Doomed"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodDelete, "/templates/"+saved.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, st.Templates())

	// deleting again is still 204
	w = doJSON(t, r, http.MethodDelete, "/templates/"+saved.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDefaultsEndpoint(t *testing.T) {
	r, _ := newRouter(t)

	w := doJSON(t, r, http.MethodGet, "/templates/defaults", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[[AttendeeName]]")
	assert.Contains(t, w.Body.String(), "Default Certificate")
}

func TestUploadBackgroundWithoutS3(t *testing.T) {
	r, st := newRouter(t)

	saved, err := st.SaveTemplate(context.Background(), models.Template{Name: "x"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/templates/"+saved.ID.String()+"/background", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
