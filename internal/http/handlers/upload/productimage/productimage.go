// Package productimage stores admin-uploaded product photos under the
// public uploads directory and returns the path to reference from the
// catalog.
package productimage

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
)

// maxUploadSize caps a single image at 5MB.
const maxUploadSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

type Handler struct {
	log *slog.Logger
	dir string
}

// New returns the handler writing into dir/products.
func New(log *slog.Logger, dir string) *Handler {
	return &Handler{log: log, dir: dir}
}

type uploadedFile struct {
	FilePath     string `json:"filePath"`
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upload.productimage"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("image")
	if err != nil {
		log.Warn("failed to read uploaded file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeInvalidInput,
			"no file uploaded or file exceeds the 5MB limit"))
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeInvalidInput,
			"only image files are allowed (jpeg, jpg, png, webp)"))
		return
	}

	productsDir := filepath.Join(h.dir, "products")
	if err := os.MkdirAll(productsDir, 0o755); err != nil {
		log.Error("failed to create upload directory", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeServerError, "failed to store file"))
		return
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(productsDir, name))
	if err != nil {
		log.Error("failed to create upload file", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeServerError, "failed to store file"))
		return
	}
	defer func() { _ = dst.Close() }()

	size, err := io.Copy(dst, file)
	if err != nil {
		log.Error("failed to write upload file", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeServerError, "failed to store file"))
		return
	}

	log.Info("stored product image", slog.String("file", name), slog.Int64("size", size))
	render.JSON(w, r, response.OKWithData(uploadedFile{
		FilePath:     "/uploads/products/" + name,
		FileName:     name,
		OriginalName: header.Filename,
		Size:         size,
	}))
}
