package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lvillar/docrender"
	"github.com/lvillar/docrender/cache"
	"github.com/lvillar/docrender/record"
	"github.com/lvillar/docrender/upload"
)

type generateResponse struct {
	Message string `json:"message"`
	File    string `json:"file"`
	FileID  string `json:"file_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) generate(kind docrender.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		name, ok, err := record.FileName(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !ok {
			writeError(w, http.StatusBadRequest, docrender.ErrMissingFileName.Error())
			return
		}

		pdf, err := s.render(r.Context(), kind, body)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		file := name + ".pdf"
		ctx, cancel := context.WithTimeout(r.Context(), s.uploadTimeout)
		defer cancel()
		id, err := s.store.Upload(ctx, file, s.folders[kind], bytes.NewReader(pdf))
		if err != nil {
			s.fail(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, generateResponse{
			Message: "PDF generated and uploaded successfully",
			File:    file,
			FileID:  id,
		})
	}
}

// render returns the PDF of body, through the cache when one is set.
func (s *Server) render(ctx context.Context, kind docrender.Kind, body []byte) ([]byte, error) {
	key := cache.Key(kind.String(), body, s.cacheSettings...)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache get", "err", err)
	} else if ok {
		s.logger.Debug("cache hit", "kind", kind)
		return data, nil
	}

	var buf bytes.Buffer
	if _, err := s.renderer.Render(&buf, kind, body); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, buf.Bytes(), s.cacheTTL); err != nil {
		s.logger.Warn("cache set", "err", err)
	}
	return buf.Bytes(), nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("generate failed", "id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeError(w, status, msg)
}

// classify maps an error to its HTTP status and client message.
func classify(err error) (int, string) {
	var missing *record.MissingFieldError
	var invalid *record.InvalidValueError
	var uerr *upload.Error
	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, missing.Error()
	case errors.As(err, &invalid):
		return http.StatusBadRequest, invalid.Error()
	case docrender.IsInputError(err):
		return http.StatusBadRequest, rootCause(err).Error()
	case errors.As(err, &uerr):
		return http.StatusBadGateway, "Upload failed: " + uerr.Err.Error()
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error: " + err.Error()
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
