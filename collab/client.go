// Package collab is a WebSocket client for real-time document collaboration.
// It joins a document session, publishes presence and edit operations, and
// reconnects with a fixed delay when the connection drops.
package collab

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/fernandezvara/designkit/idgen"
)

// DefaultReconnectDelay is the wait between connection attempts.
const DefaultReconnectDelay = 3 * time.Second

// readLimit bounds inbound message size.
const readLimit = 1 << 20

// ErrNoDocument is returned by New when no document id is configured.
var ErrNoDocument = errors.New("collab: document id is required")

// Config describes the session a Client joins.
type Config struct {
	URL        string
	DocumentID string
	User       Participant
}

// Client keeps a session open against the collaboration service.
// Its methods are safe for concurrent use; callbacks run on the client's
// read goroutine, except local operation callbacks which run on the caller's.
type Client struct {
	cfg            Config
	reconnectDelay time.Duration
	logger         *slog.Logger
	ids            idgen.Generator

	mu   sync.RWMutex
	conn *websocket.Conn

	// presenceMu orders presence writes against session setup, so an
	// update is either replayed by the session or written on its conn.
	presenceMu sync.Mutex
	presence   *Presence

	listenersMu    sync.RWMutex
	nextListener   int
	onOperation    map[int]func(Operation)
	onLocal        map[int]func(Operation)
	onPresence     map[int]func(Presence)
	onStatusChange map[int]func(connected bool)

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithReconnectDelay sets the fixed wait between connection attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.reconnectDelay = d
		}
	}
}

// WithLogger sets the logger for connection events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithIDGenerator sets the generator for operation ids.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(c *Client) {
		c.ids = gen
	}
}

// New creates a Client. Nothing is dialed until Start.
//
// Example:
//
//	client, err := collab.New(collab.Config{
//	    URL:        "wss://collab.example.com/ws",
//	    DocumentID: "page-42",
//	    User:       collab.Participant{ID: "u1", Name: "Ada"},
//	})
//	client.OnOperation(apply)
//	client.Start(ctx)
//	defer client.Close()
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.DocumentID == "" {
		return nil, ErrNoDocument
	}

	c := &Client{
		cfg:            cfg,
		reconnectDelay: DefaultReconnectDelay,
		logger:         slog.Default(),
		ids:            idgen.UUID(),
		onOperation:    make(map[int]func(Operation)),
		onLocal:        make(map[int]func(Operation)),
		onPresence:     make(map[int]func(Presence)),
		onStatusChange: make(map[int]func(bool)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start launches the connection loop. It returns immediately; the first
// connection attempt happens in the background. Calling Start twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.run(ctx)
}

// Close stops the connection loop and closes the connection, waiting for
// the loop to exit.
func (c *Client) Close() error {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Connected reports whether a session is currently open.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// SendOperation publishes op to the other participants. Missing id, user
// and timestamp are filled in. Local operation listeners are always
// notified; when disconnected nothing is queued. Transport failures are
// logged, not returned.
func (c *Client) SendOperation(ctx context.Context, op Operation) error {
	if op.ID == "" {
		op.ID = c.ids.NewID()
	}
	if op.UserID == "" {
		op.UserID = c.cfg.User.ID
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now().UTC()
	}

	c.emitLocal(op)

	if conn := c.currentConn(); conn != nil {
		if err := wsjson.Write(ctx, conn, message{Type: TypeOperation, DocumentID: c.cfg.DocumentID, Operation: &op}); err != nil {
			c.logger.Warn("collab: send operation failed", "document_id", c.cfg.DocumentID, "operation_id", op.ID, "error", err)
		}
	}
	return nil
}

// UpdatePresence publishes the local user's presence. The latest presence
// is remembered and re-sent after every reconnect.
func (c *Client) UpdatePresence(ctx context.Context, p Presence) error {
	if p.UserID == "" {
		p.UserID = c.cfg.User.ID
	}
	p.Online = true

	c.presenceMu.Lock()
	defer c.presenceMu.Unlock()
	c.presence = &p

	if conn := c.currentConn(); conn != nil {
		if err := wsjson.Write(ctx, conn, message{Type: TypePresence, DocumentID: c.cfg.DocumentID, Presence: &p}); err != nil {
			c.logger.Warn("collab: send presence failed", "document_id", c.cfg.DocumentID, "error", err)
		}
	}
	return nil
}

// OnOperation registers fn for operations from other participants.
// The returned function unregisters it.
func (c *Client) OnOperation(fn func(Operation)) (unsubscribe func()) {
	return subscribe(c, c.onOperation, fn)
}

// OnLocalOperation registers fn for operations sent by this client.
func (c *Client) OnLocalOperation(fn func(Operation)) (unsubscribe func()) {
	return subscribe(c, c.onLocal, fn)
}

// OnPresenceChange registers fn for presence updates of other participants.
// A participant leaving is reported with Online false.
func (c *Client) OnPresenceChange(fn func(Presence)) (unsubscribe func()) {
	return subscribe(c, c.onPresence, fn)
}

// OnStatusChange registers fn for connection state changes.
func (c *Client) OnStatusChange(fn func(connected bool)) (unsubscribe func()) {
	return subscribe(c, c.onStatusChange, fn)
}

func subscribe[F any](c *Client, set map[int]F, fn F) func() {
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	set[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(set, id)
		c.listenersMu.Unlock()
	}
}

func snapshot[F any](c *Client, set map[int]F) []F {
	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	out := make([]F, 0, len(set))
	for _, fn := range set {
		out = append(out, fn)
	}
	return out
}

func (c *Client) emitLocal(op Operation) {
	for _, fn := range snapshot(c, c.onLocal) {
		fn(op)
	}
}

func (c *Client) currentConn() *websocket.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.storeConn(conn)
	c.notifyStatus(conn != nil)
}

func (c *Client) storeConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) notifyStatus(connected bool) {
	for _, fn := range snapshot(c, c.onStatusChange) {
		fn(connected)
	}
}

// run connects, serves the session, and retries after a fixed delay until
// ctx is cancelled.
func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("collab: connection lost",
			"document_id", c.cfg.DocumentID,
			"error", err,
			"retry_in", c.reconnectDelay,
		)

		timer := time.NewTimer(c.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(readLimit)

	user := c.cfg.User
	if err := wsjson.Write(ctx, conn, message{Type: TypeJoin, DocumentID: c.cfg.DocumentID, User: &user}); err != nil {
		return err
	}

	if err := c.replayPresence(ctx, conn); err != nil {
		return err
	}
	c.notifyStatus(true)
	defer c.setConn(nil)
	c.logger.Info("collab: joined", "document_id", c.cfg.DocumentID, "user_id", user.ID)

	for {
		var msg message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}
		c.dispatch(msg)
	}
}

// replayPresence re-sends the latest presence and publishes conn while
// holding presenceMu.
func (c *Client) replayPresence(ctx context.Context, conn *websocket.Conn) error {
	c.presenceMu.Lock()
	defer c.presenceMu.Unlock()

	if c.presence != nil {
		if err := wsjson.Write(ctx, conn, message{Type: TypePresence, DocumentID: c.cfg.DocumentID, Presence: c.presence}); err != nil {
			return err
		}
	}
	c.storeConn(conn)
	return nil
}

// dispatch delivers an inbound message. Echoes of the local user's own
// messages are dropped.
func (c *Client) dispatch(msg message) {
	switch msg.Type {
	case TypeOperation:
		if msg.Operation == nil || msg.Operation.UserID == c.cfg.User.ID {
			return
		}
		for _, fn := range snapshot(c, c.onOperation) {
			fn(*msg.Operation)
		}
	case TypePresence:
		if msg.Presence == nil || msg.Presence.UserID == c.cfg.User.ID {
			return
		}
		for _, fn := range snapshot(c, c.onPresence) {
			fn(*msg.Presence)
		}
	case TypeLeave:
		if msg.User == nil || msg.User.ID == c.cfg.User.ID {
			return
		}
		left := Presence{UserID: msg.User.ID, Name: msg.User.Name, Color: msg.User.Color, Online: false}
		for _, fn := range snapshot(c, c.onPresence) {
			fn(left)
		}
	default:
		c.logger.Debug("collab: ignoring message", "type", msg.Type)
	}
}
