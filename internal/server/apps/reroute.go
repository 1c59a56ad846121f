package apps

import (
	"context"
	"net/http"

	"github.com/atlanticdynamic/lynxlet/internal/server/routing"
)

// Reroute dispatches the request again under another path on the same router.
type Reroute struct {
	id     string
	target string
}

func NewReroute(id, target string) *Reroute {
	return &Reroute{id: id, target: target}
}

func (a *Reroute) String() string { return a.id }

func (a *Reroute) HandleHTTP(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	return routing.Reroute(w, r, a.target)
}
