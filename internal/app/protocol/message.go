package protocol

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// Message is the tagged union of incoming server pushes. Handlers switch
// over the concrete types; unrecognized tags decode to UnknownMessage so
// nothing is dropped silently.
type Message interface {
	isMessage()
}

// StateMessage is a full-state snapshot. It fully replaces the local
// queue mirror; intermediate snapshots may be dropped, but a stale one
// must never be applied after a newer one.
type StateMessage struct {
	Data StateData `mapstructure:"data"`
}

// ErrorMessage reports a rejected command. No local rollback happens
// beyond waiting for the next snapshot.
type ErrorMessage struct {
	Message string `mapstructure:"message"`
}

// NoticeMessage is ephemeral toast text.
type NoticeMessage struct {
	Message string `mapstructure:"message"`
}

// VoteUpdateMessage is a vote-count delta for one queue entry. It does
// not require a full re-render of the queue ordering.
type VoteUpdateMessage struct {
	QueueID   int `mapstructure:"queue_id"`
	Upvotes   int `mapstructure:"upvotes"`
	Downvotes int `mapstructure:"downvotes"`
}

// ArtistImagesMessage carries resolved artist imagery URLs.
type ArtistImagesMessage struct {
	Images map[string]string `mapstructure:"images"`
}

// ShutdownMessage announces a server shutdown.
type ShutdownMessage struct {
	Message string `mapstructure:"message"`
}

// UnknownMessage is any push with an unrecognized action tag.
type UnknownMessage struct {
	ActionTag string
	Raw       map[string]any
}

func (StateMessage) isMessage()        {}
func (ErrorMessage) isMessage()        {}
func (NoticeMessage) isMessage()       {}
func (VoteUpdateMessage) isMessage()   {}
func (ArtistImagesMessage) isMessage() {}
func (ShutdownMessage) isMessage()     {}
func (UnknownMessage) isMessage()      {}

// DecodeMessage parses one incoming wire message into its typed form.
func DecodeMessage(data []byte) (Message, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "malformed message")
	}

	action, _ := raw["action"].(string)
	switch action {
	case "state":
		var m StateMessage
		if err := decodePayload(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case "error":
		var m ErrorMessage
		if err := decodePayload(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case "notice", "toast":
		var m NoticeMessage
		if err := decodePayload(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case "vote_update":
		var m VoteUpdateMessage
		if err := decodePayload(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case "artist_images":
		var m ArtistImagesMessage
		if err := decodePayload(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case "server_shutdown":
		var m ShutdownMessage
		if err := decodePayload(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return UnknownMessage{ActionTag: action, Raw: raw}, nil
	}
}

// decodePayload maps the raw envelope onto a typed message. The decoder
// is weakly typed because the server serializes some numerics as floats.
func decodePayload(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return errors.Wrapf(err, "failed to decode %T payload", out)
	}
	return nil
}
