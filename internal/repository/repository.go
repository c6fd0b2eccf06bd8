package repository

import (
	"strings"
	"time"
)

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// trimKind strips the "kind:" prefix CouchDB doc ids carry.
func trimKind(docID, prefix string) string {
	return strings.TrimPrefix(docID, prefix)
}
