// Package dispatch translates UI intents into transport commands and
// tracks in-flight optimistic expectations until a snapshot confirms or
// expires them.
package dispatch

import "time"

// IntentKind is the optimistic expectation attached to a sent command.
type IntentKind int

const (
	IntentRequest IntentKind = iota // Song expected to appear in the next snapshot
	IntentRemove                    // Entry expected to disappear from the next snapshot
)

// Intent is one in-flight optimistic change. It is cleared either by a
// matching snapshot state or by its deadline; the snapshot always wins
// silently.
type Intent struct {
	ID       string
	Kind     IntentKind
	SongKey  string
	QueueID  int
	Deadline time.Time
}

// DefaultIntentTTL bounds how long an unconfirmed intent overrides the
// rendered state.
const DefaultIntentTTL = 10 * time.Second
