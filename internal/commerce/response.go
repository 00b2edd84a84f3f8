package commerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Response is one API call's outcome. Data holds the decoded JSON object
// body; fields other than acceptedCount are passed through uninterpreted.
type Response struct {
	Status int
	Data   map[string]any
}

// AcceptedCount reports data.acceptedCount. Missing or non-numeric values
// count as zero.
func (r Response) AcceptedCount() int {
	v, ok := r.Data["acceptedCount"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil && i > 0 {
			return int(i)
		}
		if f, err := n.Float64(); err == nil && f > 0 && !math.IsInf(f, 0) {
			return int(f)
		}
	case float64:
		if n > 0 {
			return int(n)
		}
	case int:
		if n > 0 {
			return n
		}
	case int64:
		if n > 0 {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil && i > 0 {
			return i
		}
	}
	return 0
}

func decodeResponse(status int, raw []byte) (Response, error) {
	resp := Response{Status: status, Data: map[string]any{}}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if m, ok := body.(map[string]any); ok {
		resp.Data = m
	} else {
		resp.Data["body"] = body
	}
	return resp, nil
}

const maxErrorBody = 512

// APIError is a non-2xx answer from the API or the token endpoint.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return fmt.Sprintf("commerce %s: http status %d: %s", e.Path, e.Status, body)
}
