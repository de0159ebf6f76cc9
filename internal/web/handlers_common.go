package web

// Shared request parsing for the catalog handlers.

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/catalog/internal/core"
)

// maxJSONBody caps batch mutation bodies.
const maxJSONBody = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func vendorParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "vendorID"))
}

// parseBoolParam reads a boolean from the query string or form, falling back
// to defaultVal when absent or unparseable.
func parseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" && r.MultipartForm != nil {
		if vs := r.MultipartForm.Value[name]; len(vs) > 0 {
			val = vs[0]
		}
	}
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	i, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// readCSVBody returns the uploaded CSV, from the multipart "file" field or
// from the raw body for any other content type. The whole body is read
// under maxSize so an oversized upload fails before any parsing.
func readCSVBody(w http.ResponseWriter, r *http.Request, maxSize int64) (io.Reader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return nil, sizeOr(err, "parse multipart form")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, core.ErrNoFile
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, errors.Wrap(err, "read uploaded file")
		}
		return bytes.NewReader(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, sizeOr(err, "read request body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, core.ErrNoFile
	}
	return bytes.NewReader(data), nil
}

func sizeOr(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errors.Mark(errors.Wrap(err, msg), core.ErrFileTooLarge)
	}
	return errors.Wrap(err, msg)
}

// decodeJSON decodes a bounded JSON body into v and checks its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Mark(errors.Wrap(err, "decode request body"), core.ErrBadRequest)
	}
	if err := validate.Struct(v); err != nil {
		return errors.Mark(errors.Wrap(err, "validate request body"), core.ErrBadRequest)
	}
	return nil
}
