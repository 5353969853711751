package productimage

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestProductImageHandler_ServeHTTP(t *testing.T) {
	t.Run("stores an image and returns its public path", func(t *testing.T) {
		dir := t.TempDir()
		handler := New(newNoopLogger(), dir)

		body, contentType := multipartBody(t, "image", "vela.png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/admin/upload/product-image", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])

		data := resp["data"].(map[string]any)
		filePath := data["filePath"].(string)
		assert.True(t, strings.HasPrefix(filePath, "/uploads/products/"))
		assert.True(t, strings.HasSuffix(filePath, ".png"))
		assert.Equal(t, "vela.png", data["originalName"])

		stored := filepath.Join(dir, "products", data["fileName"].(string))
		content, err := os.ReadFile(stored)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(content))
	})

	t.Run("rejects non-image extensions", func(t *testing.T) {
		dir := t.TempDir()
		handler := New(newNoopLogger(), dir)

		body, contentType := multipartBody(t, "image", "malware.exe", []byte("nope"))
		req := httptest.NewRequest(http.MethodPost, "/admin/upload/product-image", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		errBody := resp["error"].(map[string]any)
		assert.Equal(t, "INVALID_INPUT", errBody["code"])

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects a missing file field", func(t *testing.T) {
		handler := New(newNoopLogger(), t.TempDir())

		body, contentType := multipartBody(t, "document", "vela.png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/admin/upload/product-image", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
