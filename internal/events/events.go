package events

import "time"

// Envelope is the wire shape of every feed message.
//
// Event types:
//
//	scrape.stage   one pipeline stage started ({"stage": ..., "slug": ...})
//	scrape.done    a scrape finished
//	scrape.failed  a scrape aborted
type Envelope struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}
