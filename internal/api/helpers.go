package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/vytor/stormstats/internal/errors"
	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/replay"
	"github.com/vytor/stormstats/internal/services"
)

const (
	uploadField = "replay"
	// multipart framing on top of the largest accepted replay
	uploadSlack     = 1 << 20
	uploadMemoryMax = 1 << 20
)

// saveUpload copies the multipart replay into the upload directory under a
// random name that keeps the original extension.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (services.Upload, error) {
	log := logger.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, replay.MaxFileSize+uploadSlack)

	if err := r.ParseMultipartForm(uploadMemoryMax); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return services.Upload{}, errors.NewPayloadTooLargeError(replay.MaxFileSize)
		}
		return services.Upload{}, errors.NewBadRequestError("invalid multipart form")
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("failed to remove multipart temp files: %v", err)
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return services.Upload{}, errors.NewValidationError(uploadField, "file is required")
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	path := filepath.Join(s.UploadDir, uuid.NewString()+filepath.Ext(name))

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return services.Upload{}, errors.NewInternalError(err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		removeFile(log, path)
		return services.Upload{}, errors.NewInternalError(err)
	}
	if err := out.Close(); err != nil {
		removeFile(log, path)
		return services.Upload{}, errors.NewInternalError(err)
	}

	log.Debug("upload saved: name=%s, size=%d, path=%s", name, header.Size, path)
	return services.Upload{Name: name, Path: path}, nil
}

func removeFile(log *logger.Logger, path string) {
	if err := os.Remove(path); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove upload %s: %v", path, err)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
