package api_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pagecms/pagecms/pkg/pagecms/api"
	"github.com/pagecms/pagecms/pkg/pagecms/imaging"
	memorystorage "github.com/pagecms/pagecms/pkg/pagecms/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupImageRouter(t *testing.T) chi.Router {
	t.Helper()

	store := memorystorage.New()
	svc, err := imaging.New(store, imaging.WithSizes([]imaging.Size{
		{Name: "xs", Width: 40, Height: 40},
		{Name: "sm", Width: 100, Height: 100},
	}))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/images", api.NewImageHandler(svc).Routes())
	return r
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 80, 80))))
	return buf.Bytes()
}

func TestImageUploadEndpoint(t *testing.T) {
	router := setupImageRouter(t)

	body, contentType := multipartUpload(t, "image", "photo.png", testPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/images/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var variants map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &variants))
	assert.Len(t, variants, 2)
	assert.Contains(t, variants, "xs")
	assert.Contains(t, variants, "sm")

	t.Run("retrieve stored variant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/images/"+variants["xs"], nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.NotEmpty(t, w.Body.Bytes())
	})
}

func TestImageUploadRejectsNonImages(t *testing.T) {
	router := setupImageRouter(t)

	// A script renamed to .jpg: the extension and declared type lie, the
	// sniffed bytes do not.
	body, contentType := multipartUpload(t, "image", "script.jpg", []byte("#!/bin/sh\necho hi\n"))
	req := httptest.NewRequest(http.MethodPost, "/images/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageUploadRequiresFileField(t *testing.T) {
	router := setupImageRouter(t)

	body, contentType := multipartUpload(t, "wrong_field", "photo.png", testPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/images/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageUploadRejectsOversizedBody(t *testing.T) {
	store := memorystorage.New()
	svc, err := imaging.New(store, imaging.WithMaxUploadBytes(1024))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/images", api.NewImageHandler(svc).Routes())

	// Well past the cap plus any multipart overhead.
	oversized := make([]byte, 64<<10)
	for i := range oversized {
		oversized[i] = byte(i)
	}

	body, contentType := multipartUpload(t, "image", "huge.png", oversized)
	req := httptest.NewRequest(http.MethodPost, "/images/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "upload limit")
}

func TestImageRetrieveErrors(t *testing.T) {
	router := setupImageRouter(t)

	t.Run("unknown reference", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/images/deadbeef-xs.png", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("traversal reference", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/images/..%2Fsecrets", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
