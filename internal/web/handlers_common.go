package web

// handlers_common.go holds request decoding helpers shared by the handlers.

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// multipartMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return catalog.ValidationError{Field: "body", Message: "request body is empty"}
		}
		return catalog.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// parseForm parses a multipart body of at most limit bytes, plus slack for
// the form fields.
func parseForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxJSONBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return catalog.ValidationError{Field: "file", Message: "file too large: limit is " + strconv.FormatInt(limit, 10) + " bytes"}
		}
		return catalog.ValidationError{Field: "body", Message: "invalid multipart form"}
	}
	return nil
}

// formFile returns the named file part.
func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	f, h, err := r.FormFile(field)
	if err != nil {
		return nil, nil, catalog.Required(field)
	}
	return f, h, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// articleFromForm reads the Article fields of a multipart form. autores
// and keywords are JSON arrays; autores accepts objects ({"nome": ...}) or
// plain names.
func articleFromForm(r *http.Request) (catalog.Article, error) {
	a := catalog.Article{
		Title:     r.FormValue("titulo"),
		EditionID: r.FormValue("edicao_id"),
		Abstract:  r.FormValue("resumo"),
		Pages:     r.FormValue("paginas"),
		DOI:       r.FormValue("doi"),
	}

	authors, err := parseAuthors(r.FormValue("autores"))
	if err != nil {
		return catalog.Article{}, err
	}
	a.Authors = authors

	if raw := strings.TrimSpace(r.FormValue("keywords")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &a.Keywords); err != nil {
			return catalog.Article{}, catalog.ValidationError{Field: "keywords", Value: raw, Message: "must be a JSON array of strings"}
		}
	}
	return a, nil
}

func parseAuthors(raw string) ([]catalog.Author, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var objs []catalog.Author
	if err := json.Unmarshal([]byte(raw), &objs); err == nil {
		return objs, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err == nil {
		return catalog.AuthorsFromNames(names), nil
	}
	return nil, catalog.ValidationError{Field: "autores", Value: raw, Message: "must be a JSON array"}
}

// intQuery parses an integer query parameter with a default value.
func intQuery(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// messageResponse is the body of mutations that return no entity.
type messageResponse struct {
	Message string `json:"message"`
}
