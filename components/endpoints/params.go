package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// ErrMalformedRequest reports a request body that cannot be decoded.
var ErrMalformedRequest = errors.New("endpoints: malformed request")

// Params is the merged parameter set of a request.
type Params map[string]any

// Has reports whether key is present with a non-null value.
func (p Params) Has(key string) bool {
	value, ok := p[key]
	return ok && value != nil
}

// String returns the scalar text of key.
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "1"
		}
		return ""
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// parseParams merges the query string, then the form body, then a JSON body.
// Later sources override earlier ones.
func parseParams(r *http.Request, maxBytes int64) (Params, error) {
	params := Params{}
	mergeValues(params, r.URL.Query())

	if r.Body == nil || r.Body == http.NoBody {
		return params, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		if int64(len(body)) > maxBytes {
			return nil, fmt.Errorf("%w: body too large", ErrMalformedRequest)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return params, nil
		}
		var payload map[string]any
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		for key, value := range payload {
			params[key] = value
		}
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		mergeValues(params, r.PostForm)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		if r.MultipartForm != nil {
			mergeValues(params, url.Values(r.MultipartForm.Value))
		}
	}
	return params, nil
}

func mergeValues(params Params, values url.Values) {
	for key, list := range values {
		switch len(list) {
		case 0:
			continue
		case 1:
			params[key] = list[0]
		default:
			params[key] = append([]string{}, list...)
		}
	}
}
