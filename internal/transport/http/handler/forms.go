package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/socialhub-api/internal/application/media"
	"github.com/socialhub-api/internal/domain"
)

const maxMultipartMemory = 8 << 20

func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "multipart/form-data"
}

// parseMultipart reads the form with room for one image plus text fields.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+maxJSONBody)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return fmt.Errorf("invalid multipart body: %w", domain.ErrBadRequest)
	}
	return nil
}

// formValue returns a pointer to the field's value, or nil when the field
// was not sent at all.
func formValue(r *http.Request, field string) *string {
	vals, ok := r.MultipartForm.Value[field]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

// formList accepts both "tags" and "tags[]" style repeated fields. The
// second result is false when neither was sent.
func formList(r *http.Request, field string) ([]string, bool) {
	vals, ok := r.MultipartForm.Value[field]
	more, okBracket := r.MultipartForm.Value[field+"[]"]
	if !ok && !okBracket {
		return nil, false
	}
	out := make([]string, 0, len(vals)+len(more))
	for _, v := range append(vals, more...) {
		if v != "" {
			out = append(out, v)
		}
	}
	return out, true
}

// formImage opens the uploaded file under field. It returns a nil upload
// when no file was sent; the caller closes the returned file.
func formImage(r *http.Request, field string) (*media.Upload, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("invalid %s upload: %w", field, domain.ErrBadRequest)
	}
	up := &media.Upload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	return up, func() { _ = file.Close() }, nil
}
