package formjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
)

// MaxBodySize bounds the form bodies read by [Middleware].
const MaxBodySize = 10 << 20

// Middleware returns HTTP middleware that turns form posts into JSON
// requests. A request with an application/x-www-form-urlencoded or
// multipart/form-data body reaches the next handler with the nested JSON
// encoding of its fields as body and Content-Type application/json. File
// parts of multipart bodies are dropped. Other requests pass through
// unchanged, and a body that cannot be parsed is answered with 400.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			var values *Values
			body := http.MaxBytesReader(w, r.Body, MaxBodySize)
			switch mediaType {
			case "application/x-www-form-urlencoded":
				values, err = readURLEncoded(body)
			case "multipart/form-data":
				values, err = readMultipart(body, params["boundary"])
			default:
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				status := http.StatusBadRequest
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					status = http.StatusRequestEntityTooLarge
				}
				http.Error(w, err.Error(), status)
				return
			}

			data, err := Marshal(values, opts...)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			r2 := r.Clone(r.Context())
			r2.Body = io.NopCloser(bytes.NewReader(data))
			r2.ContentLength = int64(len(data))
			r2.Header.Set("Content-Type", "application/json")
			r2.Header.Set("Content-Length", strconv.Itoa(len(data)))
			next.ServeHTTP(w, r2)
		})
	}
}

func readURLEncoded(r io.Reader) (*Values, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("form: failed to read body: %w", err)
	}
	return ParseQuery(string(b))
}

// readMultipart collects the non-file parts of a multipart body in order.
func readMultipart(r io.Reader, boundary string) (*Values, error) {
	if boundary == "" {
		return nil, fmt.Errorf("form: multipart body without boundary")
	}

	values := NewValues()
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("form: invalid multipart body: %w", err)
		}

		name := part.FormName()
		if name == "" || part.FileName() != "" {
			part.Close()
			continue
		}
		b, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("form: failed to read part %q: %w", name, err)
		}
		values.Add(name, string(b))
	}
}
