package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/hibiki-dev/encore/internal/app/protocol"
	"github.com/hibiki-dev/encore/internal/domain/queue"
)

// Identity is the join announcement sent right after the channel opens.
type Identity struct {
	UserID  string
	Name    string
	Avatar  string
	IsAdmin bool
}

// Config holds the connection and reconnect policy.
type Config struct {
	URL          string        // ws://host:port/ endpoint
	Identity     Identity
	InitialDelay time.Duration // First reconnect delay
	MaxDelay     time.Duration // Backoff cap
	MaxAttempts  int           // Consecutive failures before giving up
	WriteTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.InitialDelay <= 0 {
		c.InitialDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
}

// Handler receives decoded pushes. The dispatch over message kinds is
// exhaustive; adding a server message kind without a handler method is a
// compile error, not a silent drop.
type Handler interface {
	HandleSnapshot(snap queue.Snapshot)
	HandleVoteUpdate(queueID, upvotes, downvotes int)
	HandleArtistImages(images map[string]string)
	HandleNotice(text string, isError bool)
	HandlePhase(p Phase)
}

// Client maintains the single push-channel connection with bounded
// exponential-backoff reconnection. Snapshots are applied last-wins; a
// valid snapshot resets the retry counter.
type Client struct {
	cfg     Config
	handler Handler

	running atomic.Bool // Reentrancy guard: one Run loop at a time

	mu       sync.Mutex
	conn     *websocket.Conn
	phase    Phase
	attempts int

	writeMu sync.Mutex

	recvSeq    uint64
	appliedSeq uint64
}

// NewClient creates a sync client. Run must be called to connect.
func NewClient(cfg Config, handler Handler) *Client {
	cfg.applyDefaults()
	return &Client{cfg: cfg, handler: handler, phase: PhaseDisconnected}
}

// Phase returns the current connection phase.
func (c *Client) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Attempts returns the consecutive failed reconnect attempts.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Client) setPhase(p Phase) {
	c.mu.Lock()
	if c.phase == p {
		c.mu.Unlock()
		return
	}
	c.phase = p
	c.mu.Unlock()
	c.handler.HandlePhase(p)
}

// Run drives the connection until the context is cancelled or the retry
// budget is exhausted. A second concurrent Run returns an error
// immediately.
func (c *Client) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("sync client already running")
	}
	defer c.running.Store(false)

	delay := c.cfg.InitialDelay
	for {
		c.setPhase(PhaseConnecting)
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			c.mu.Lock()
			c.attempts++
			attempts := c.attempts
			c.mu.Unlock()

			if attempts >= c.cfg.MaxAttempts {
				c.setPhase(PhaseExhausted)
				c.handler.HandleNotice("Lost connection to the queue server. Restart the client to retry.", true)
				return errors.Wrap(err, "reconnect attempts exhausted")
			}

			zlog.Warn().Msgf("Connect failed (attempt %d/%d): %v", attempts, c.cfg.MaxAttempts, err)
			c.setPhase(PhaseDisconnected)
			c.handler.HandleNotice("Connection to the queue server failed, retrying...", true)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = min(delay*2, c.cfg.MaxDelay)
			continue
		}

		c.setConn(conn)
		c.setPhase(PhaseConnected)

		if err := c.join(); err != nil {
			zlog.Warn().Msgf("Join announcement failed: %v", err)
		}

		err = c.readLoop(ctx, conn)
		c.setConn(nil)
		conn.Close(websocket.StatusNormalClosure, "")

		if ctx.Err() != nil {
			return ctx.Err()
		}

		zlog.Info().Msgf("Connection lost: %v", err)
		c.setPhase(PhaseDisconnected)
		c.handler.HandleNotice("Connection to the queue server lost, reconnecting...", true)
		delay = c.currentDelay()
	}
}

// currentDelay restarts the backoff ladder when the previous connection
// delivered a valid snapshot (attempts were reset).
func (c *Client) currentDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.cfg.InitialDelay
	for i := 0; i < c.attempts; i++ {
		d = min(d*2, c.cfg.MaxDelay)
	}
	return d
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.cfg.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", c.cfg.URL)
	}
	// Full-state snapshots can be large.
	conn.SetReadLimit(16 << 20)
	return conn, nil
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
}

func (c *Client) currentConn() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// join announces the client identity.
func (c *Client) join() error {
	id := c.cfg.Identity
	return c.Send(protocol.Join{
		UserID:     id.UserID,
		UserName:   id.Name,
		UserAvatar: id.Avatar,
		IsAdmin:    id.IsAdmin,
	})
}

// Send encodes and writes a command. Once written the command cannot be
// cancelled; compensate with a follow-up command instead.
func (c *Client) Send(cmd protocol.Command) error {
	conn := c.currentConn()
	if conn == nil {
		return errors.New("not connected")
	}

	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.WriteTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return errors.Wrapf(err, "failed to send %s command", cmd.Action())
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			// Malformed pushes are non-fatal; surface and keep reading.
			zlog.Warn().Msgf("Dropping malformed message: %v", err)
			c.handler.HandleNotice("Received a malformed update from the server", true)
			continue
		}

		c.dispatch(msg)
	}
}

// dispatch routes one decoded message. The switch is exhaustive over the
// protocol message kinds.
func (c *Client) dispatch(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.StateMessage:
		c.applySnapshot(m)
	case protocol.ErrorMessage:
		c.handler.HandleNotice(m.Message, true)
	case protocol.NoticeMessage:
		c.handler.HandleNotice(m.Message, false)
	case protocol.VoteUpdateMessage:
		c.handler.HandleVoteUpdate(m.QueueID, m.Upvotes, m.Downvotes)
	case protocol.ArtistImagesMessage:
		c.handler.HandleArtistImages(m.Images)
	case protocol.ShutdownMessage:
		c.handler.HandleNotice("The queue server is shutting down", true)
	case protocol.UnknownMessage:
		zlog.Warn().Msgf("Unknown server message %q", m.ActionTag)
	}
}

// applySnapshot installs a full-state push. The receive counter keeps a
// stale snapshot from ever being applied after a newer one; the retry
// counter resets because the channel is demonstrably healthy.
func (c *Client) applySnapshot(m protocol.StateMessage) {
	c.mu.Lock()
	c.recvSeq++
	seq := c.recvSeq
	if seq <= c.appliedSeq {
		c.mu.Unlock()
		return
	}
	c.appliedSeq = seq
	c.attempts = 0
	c.mu.Unlock()

	c.handler.HandleSnapshot(m.Data.Snapshot())
}
