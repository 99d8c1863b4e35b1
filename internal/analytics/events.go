package analytics

import "time"

type EventType string

const (
	EventSearch      EventType = "search"
	EventSyntaxError EventType = "syntax_error"
	EventIndexBuild  EventType = "index_build"
)

// SearchEvent describes one answered (or rejected) query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Terms     []string  `json:"terms,omitempty"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// IndexEvent describes a completed index build.
type IndexEvent struct {
	Type      EventType `json:"type"`
	Scheme    string    `json:"scheme"`
	Documents int       `json:"documents"`
	Terms     int       `json:"terms"`
	Postings  int       `json:"postings"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// envelope is used to peek at the type of an encoded event.
type envelope struct {
	Type EventType `json:"type"`
}
