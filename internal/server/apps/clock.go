package apps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// TimeLayout renders timestamps in the style of Date.toString.
	TimeLayout = "Mon Jan 02 15:04:05 MST 2006"

	DefaultClockWhat = "Time at some point"
)

type clockBody struct {
	What  string `json:"what"`
	Value string `json:"value"`
}

// Clock reports the current time as JSON.
type Clock struct {
	id   string
	what string
	now  func() time.Time
}

// NewClock creates a Clock app. A nil now uses time.Now.
func NewClock(id, what string, now func() time.Time) *Clock {
	if what == "" {
		what = DefaultClockWhat
	}
	if now == nil {
		now = time.Now
	}
	return &Clock{id: id, what: what, now: now}
}

func (a *Clock) String() string { return a.id }

// HandleHTTP writes {"what": ..., "value": <current time>}.
func (a *Clock) HandleHTTP(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	body, err := json.Marshal(clockBody{What: a.what, Value: a.now().Format(TimeLayout)})
	if err != nil {
		return fmt.Errorf("failed to encode time: %w", err)
	}
	if err := write(w, r, jsonContentType, body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
