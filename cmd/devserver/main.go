// Package main provides a development queue server: the full wire
// protocol against an in-memory queue, for exercising the client
// without the production deployment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/hibiki-dev/encore/internal/app/protocol"
	"github.com/hibiki-dev/encore/internal/infra/logger"
)

var (
	app         = kingpin.New("encore-devserver", "In-memory development server for the encore queue protocol")
	port        = app.Flag("port", "Listen port").Default("8766").Int()
	catalogPath = app.Flag("catalog", "Path to the song document").Default("songs.json").String()
	verbose     = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Output: "stdout", Level: level}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	srv, err := newServer(*catalogPath)
	if err != nil {
		zlog.Error().Msgf("Startup failed: %v", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleWS)
	mux.HandleFunc("/songs.json", srv.handleCatalog)

	addr := fmt.Sprintf(":%d", *port)
	zlog.Info().Msgf("Dev server listening on %s (%d songs)", addr, len(srv.songs))
	if err := http.ListenAndServe(addr, mux); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// client is one connected websocket with its announced identity.
type client struct {
	conn    *websocket.Conn
	userID  string
	name    string
	avatar  string
	isAdmin bool
}

// server holds the authoritative queue state. Every mutation broadcasts
// a full snapshot; vote changes additionally broadcast a delta.
type server struct {
	mu      sync.Mutex
	songs   []protocol.WireSong
	byID    map[int]protocol.WireSong
	queue   []protocol.WireEntry
	history []protocol.WirePlayed
	nextID  int
	clients map[*websocket.Conn]*client
	raw     []byte // original catalog document, served verbatim
}

func newServer(catalogPath string) (*server, error) {
	raw, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", catalogPath)
	}
	var songs []protocol.WireSong
	if err := json.Unmarshal(raw, &songs); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog")
	}

	byID := make(map[int]protocol.WireSong, len(songs))
	for _, s := range songs {
		byID[s.ID] = s
	}

	return &server{
		songs:   songs,
		byID:    byID,
		nextID:  1,
		clients: make(map[*websocket.Conn]*client),
		raw:     raw,
	}, nil
}

func (s *server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.raw)
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		zlog.Warn().Msgf("Accept failed: %v", err)
		return
	}
	conn.SetReadLimit(16 << 20)

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[conn] = c
	s.mu.Unlock()
	zlog.Info().Msgf("Client connected (%d total)", s.clientCount())

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		zlog.Info().Msgf("Client disconnected (%d total)", s.clientCount())
	}()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		s.handleMessage(ctx, c, data)
	}
}

func (s *server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *server) handleMessage(ctx context.Context, c *client, data []byte) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		s.sendError(ctx, c, "malformed message")
		return
	}
	action, _ := raw["action"].(string)
	zlog.Debug().Msgf("Action %s from %s", action, c.userID)

	switch action {
	case "join":
		var cmd protocol.Join
		if decodeInto(raw, &cmd) == nil {
			c.userID, c.name, c.avatar, c.isAdmin = cmd.UserID, cmd.UserName, cmd.UserAvatar, cmd.IsAdmin
		}
		s.sendState(ctx, c)

	case "request_song":
		var cmd protocol.RequestSong
		if err := decodeInto(raw, &cmd); err != nil {
			s.sendError(ctx, c, "bad request_song payload")
			return
		}
		s.addSongs(ctx, c, []int{cmd.SongID})

	case "addMultiple":
		var cmd protocol.AddMultiple
		if err := decodeInto(raw, &cmd); err != nil {
			s.sendError(ctx, c, "bad addMultiple payload")
			return
		}
		s.addSongs(ctx, c, cmd.SongIDs)

	case "remove_song", "forceRemove":
		var cmd protocol.RemoveSong
		if err := decodeInto(raw, &cmd); err != nil {
			s.sendError(ctx, c, "bad remove payload")
			return
		}
		force := action == "forceRemove"
		s.removeEntries(ctx, c, []int{cmd.QueueID}, force)

	case "removeMultiple":
		var cmd protocol.RemoveMultiple
		if err := decodeInto(raw, &cmd); err != nil {
			s.sendError(ctx, c, "bad removeMultiple payload")
			return
		}
		s.removeEntries(ctx, c, cmd.QueueIDs, false)

	case "vote":
		var cmd protocol.Vote
		if err := decodeInto(raw, &cmd); err != nil {
			s.sendError(ctx, c, "bad vote payload")
			return
		}
		s.vote(ctx, cmd.QueueID, cmd.VoteType)

	case "nowPlaying":
		var cmd protocol.NowPlaying
		if err := decodeInto(raw, &cmd); err != nil || !s.requireAdmin(ctx, c) {
			return
		}
		s.markPlayed(ctx, cmd.QueueID)

	case "clearAll":
		if !s.requireAdmin(ctx, c) {
			return
		}
		s.mu.Lock()
		s.queue = nil
		s.mu.Unlock()
		s.broadcastState(ctx)

	case "clearRandom":
		if !s.requireAdmin(ctx, c) {
			return
		}
		s.mu.Lock()
		kept := s.queue[:0]
		for _, e := range s.queue {
			if !e.IsRandom {
				kept = append(kept, e)
			}
		}
		s.queue = kept
		s.mu.Unlock()
		s.broadcastState(ctx)

	case "clearByUser":
		var cmd protocol.ClearByUser
		if err := decodeInto(raw, &cmd); err != nil || !s.requireAdmin(ctx, c) {
			return
		}
		s.mu.Lock()
		kept := s.queue[:0]
		for _, e := range s.queue {
			if e.UserID != cmd.UserID {
				kept = append(kept, e)
			}
		}
		s.queue = kept
		s.mu.Unlock()
		s.broadcastState(ctx)

	case "sort_queue":
		var cmd protocol.SortQueue
		if err := decodeInto(raw, &cmd); err != nil || !s.requireAdmin(ctx, c) {
			return
		}
		s.sortQueue(ctx, cmd.SortType)

	case "reorder_queue":
		var cmd protocol.ReorderQueue
		if err := decodeInto(raw, &cmd); err != nil || !s.requireAdmin(ctx, c) {
			return
		}
		s.reorder(ctx, cmd.QueueIDs)

	case "upload_songs":
		var cmd protocol.UploadSongs
		if err := decodeInto(raw, &cmd); err != nil || !s.requireAdmin(ctx, c) {
			return
		}
		s.mu.Lock()
		s.songs = cmd.Songs
		s.byID = make(map[int]protocol.WireSong, len(cmd.Songs))
		for _, song := range cmd.Songs {
			s.byID[song.ID] = song
		}
		s.mu.Unlock()
		s.broadcastState(ctx)

	case "lookup_artist_images":
		s.send(ctx, c, map[string]any{"action": "artist_images", "images": map[string]string{}})

	default:
		s.sendError(ctx, c, fmt.Sprintf("unknown action %q", action))
	}
}

func (s *server) addSongs(ctx context.Context, c *client, songIDs []int) {
	var missing []int
	s.mu.Lock()
	for _, id := range songIDs {
		song, ok := s.byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		s.queue = append(s.queue, protocol.WireEntry{
			ID:          s.nextID,
			SongID:      song.ID,
			Name:        song.Name,
			Artist:      song.Artist,
			RequestedAt: time.Now().UTC().Format("2006-01-02 15:04:05"),
			UserID:      c.userID,
			UserName:    c.name,
			UserAvatar:  c.avatar,
		})
		s.nextID++
	}
	s.mu.Unlock()

	for _, id := range missing {
		s.sendError(ctx, c, fmt.Sprintf("unknown song %d", id))
	}
	s.broadcastState(ctx)
}

func (s *server) removeEntries(ctx context.Context, c *client, queueIDs []int, force bool) {
	remove := make(map[int]struct{}, len(queueIDs))
	for _, id := range queueIDs {
		remove[id] = struct{}{}
	}

	s.mu.Lock()
	kept := s.queue[:0]
	for _, e := range s.queue {
		_, targeted := remove[e.ID]
		allowed := force && c.isAdmin || e.IsRandom || e.UserID == c.userID
		if targeted && allowed {
			continue
		}
		kept = append(kept, e)
	}
	s.queue = kept
	s.mu.Unlock()
	s.broadcastState(ctx)
}

func (s *server) vote(ctx context.Context, queueID int, voteType string) {
	s.mu.Lock()
	var up, down int
	found := false
	for i := range s.queue {
		if s.queue[i].ID == queueID {
			if voteType == "up" {
				s.queue[i].Upvotes++
			} else {
				s.queue[i].Downvotes++
			}
			up, down = s.queue[i].Upvotes, s.queue[i].Downvotes
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}
	s.broadcast(ctx, map[string]any{
		"action": "vote_update", "queue_id": queueID, "upvotes": up, "downvotes": down,
	})
}

func (s *server) markPlayed(ctx context.Context, queueID int) {
	s.mu.Lock()
	kept := s.queue[:0]
	for _, e := range s.queue {
		if e.ID == queueID {
			s.history = append(s.history, protocol.WirePlayed{Name: e.Name, Artist: e.Artist})
			continue
		}
		kept = append(kept, e)
	}
	s.queue = kept
	s.mu.Unlock()
	s.broadcastState(ctx)
}

func (s *server) sortQueue(ctx context.Context, sortType string) {
	s.mu.Lock()
	switch sortType {
	case "oldest":
		sort.SliceStable(s.queue, func(i, j int) bool { return s.queue[i].ID < s.queue[j].ID })
	case "newest":
		sort.SliceStable(s.queue, func(i, j int) bool { return s.queue[i].ID > s.queue[j].ID })
	case "upvotes":
		sort.SliceStable(s.queue, func(i, j int) bool {
			return s.queue[i].Upvotes-s.queue[i].Downvotes > s.queue[j].Upvotes-s.queue[j].Downvotes
		})
	case "random":
		rand.Shuffle(len(s.queue), func(i, j int) { s.queue[i], s.queue[j] = s.queue[j], s.queue[i] })
	}
	s.mu.Unlock()
	s.broadcastState(ctx)
}

func (s *server) reorder(ctx context.Context, queueIDs []int) {
	s.mu.Lock()
	byID := make(map[int]protocol.WireEntry, len(s.queue))
	for _, e := range s.queue {
		byID[e.ID] = e
	}
	reordered := make([]protocol.WireEntry, 0, len(s.queue))
	for _, id := range queueIDs {
		if e, ok := byID[id]; ok {
			reordered = append(reordered, e)
			delete(byID, id)
		}
	}
	// Entries missing from the ordering keep their relative positions at
	// the tail.
	for _, e := range s.queue {
		if _, left := byID[e.ID]; left {
			reordered = append(reordered, e)
		}
	}
	s.queue = reordered
	s.mu.Unlock()
	s.broadcastState(ctx)
}

func (s *server) requireAdmin(ctx context.Context, c *client) bool {
	if c.isAdmin {
		return true
	}
	s.sendError(ctx, c, "admin privileges required")
	return false
}

func (s *server) stateMessage() map[string]any {
	return map[string]any{
		"action": "state",
		"data": protocol.StateData{
			Songs:   append([]protocol.WireSong(nil), s.songs...),
			Queue:   append([]protocol.WireEntry(nil), s.queue...),
			History: append([]protocol.WirePlayed(nil), s.history...),
		},
	}
}

func (s *server) sendState(ctx context.Context, c *client) {
	s.mu.Lock()
	msg := s.stateMessage()
	s.mu.Unlock()
	s.send(ctx, c, msg)
}

func (s *server) broadcastState(ctx context.Context) {
	s.mu.Lock()
	msg := s.stateMessage()
	s.mu.Unlock()
	s.broadcast(ctx, msg)
}

func (s *server) broadcast(ctx context.Context, msg map[string]any) {
	data, err := json.Marshal(msg)
	if err != nil {
		zlog.Error().Msgf("Broadcast encode failed: %v", err)
		return
	}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
			zlog.Debug().Msgf("Broadcast write failed: %v", err)
		}
		cancel()
	}
}

func (s *server) send(ctx context.Context, c *client, msg map[string]any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		zlog.Debug().Msgf("Send failed: %v", err)
	}
}

func (s *server) sendError(ctx context.Context, c *client, text string) {
	s.send(ctx, c, map[string]any{"action": "error", "message": text})
}

func decodeInto(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
