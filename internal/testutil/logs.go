package testutil

import (
	"log/slog"

	"github.com/robbyt/go-loglater"
	"github.com/robbyt/go-loglater/storage"
)

// NewLogCollector returns a logger whose records are kept in memory, along with the collector
// holding them.
func NewLogCollector() (*slog.Logger, *loglater.LogCollector) {
	collector := loglater.NewLogCollector(nil)
	return slog.New(collector), collector
}

// FindRecords returns the records whose message equals msg.
func FindRecords(records []storage.Record, msg string) []storage.Record {
	var found []storage.Record
	for _, r := range records {
		if r.Message == msg {
			found = append(found, r)
		}
	}
	return found
}

// AttrValue looks up key among the record's attributes, descending into groups.
func AttrValue(r storage.Record, key string) (slog.Value, bool) {
	return findAttr(r.Attrs, key)
}

func findAttr(attrs []slog.Attr, key string) (slog.Value, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.Resolve(), true
		}
		if a.Value.Kind() == slog.KindGroup {
			if v, ok := findAttr(a.Value.Group(), key); ok {
				return v, true
			}
		}
	}
	return slog.Value{}, false
}
