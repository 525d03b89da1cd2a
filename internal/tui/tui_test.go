package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hibiki-dev/encore/internal/app/notify"
)

func TestTab_RoundTrip(t *testing.T) {
	for _, tab := range []Tab{TabSongs, TabQueue, TabHistory} {
		assert.Equal(t, tab, ParseTab(tab.String()))
	}
	assert.Equal(t, TabSongs, ParseTab("bogus"))
}

func TestChannelSink_NeverBlocks(t *testing.T) {
	sink := channelSink{ch: make(chan notify.Notice, 1)}

	// Fill the buffer, then keep notifying; overflow is dropped silently.
	sink.Notify(notify.Notice{Seq: 1})
	sink.Notify(notify.Notice{Seq: 2})
	sink.Notify(notify.Notice{Seq: 3})

	n := <-sink.ch
	assert.Equal(t, uint64(1), n.Seq)
	select {
	case <-sink.ch:
		t.Fatal("expected overflow notices to be dropped")
	default:
	}
}
