package apps

import (
	"context"
	"fmt"
	"net/http"
)

// DefaultTextContentType is used when a text app has no content type configured.
const DefaultTextContentType = "text/plain; charset=utf-8"

// Text writes a fixed body.
type Text struct {
	id          string
	body        []byte
	contentType string
}

// NewText creates a Text app. An empty contentType means plain UTF-8 text.
func NewText(id, body, contentType string) *Text {
	if contentType == "" {
		contentType = DefaultTextContentType
	}
	return &Text{id: id, body: []byte(body), contentType: contentType}
}

func (a *Text) String() string { return a.id }

// HandleHTTP writes the configured body.
func (a *Text) HandleHTTP(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := write(w, r, a.contentType, a.body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
