package apps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const jsonContentType = "application/json"

// JSON writes a fixed document, encoded once when the app is created.
type JSON struct {
	id   string
	body []byte
}

// NewJSON encodes fields and returns an app serving them. Keys are written in sorted order.
func NewJSON(id string, fields map[string]any, pretty bool) (*JSON, error) {
	if fields == nil {
		fields = map[string]any{}
	}

	var (
		body []byte
		err  error
	)
	if pretty {
		body, err = json.MarshalIndent(fields, "", "  ")
	} else {
		body, err = json.Marshal(fields)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, id, err)
	}
	return &JSON{id: id, body: body}, nil
}

func (a *JSON) String() string { return a.id }

// HandleHTTP writes the encoded document.
func (a *JSON) HandleHTTP(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := write(w, r, jsonContentType, a.body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
