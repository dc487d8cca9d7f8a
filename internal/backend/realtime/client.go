// Package realtime subscribes to row changes pushed by the backend over its
// Phoenix-channel websocket. Used for live chapter comments.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultHeartbeat = 30 * time.Second
	joinTimeout      = 10 * time.Second
	protocolVersion  = "1.0.0"
)

// Change is one row event delivered to a subscription.
type Change struct {
	Type            string          `json:"type"`
	Schema          string          `json:"schema"`
	Table           string          `json:"table"`
	CommitTimestamp string          `json:"commit_timestamp"`
	Record          json.RawMessage `json:"record"`
	OldRecord       json.RawMessage `json:"old_record,omitempty"`
}

// Decode unmarshals the new row into v.
func (c Change) Decode(v any) error {
	if len(c.Record) == 0 {
		return errors.New("change carries no record")
	}
	return json.Unmarshal(c.Record, v)
}

// Subscription selects which changes to receive. Event is INSERT, UPDATE,
// DELETE or * and Filter uses the REST filter syntax, e.g. chapter_id=eq.42.
type Subscription struct {
	Schema      string
	Table       string
	Event       string
	Filter      string
	AccessToken string
}

type message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
}

type Client struct {
	endpoint  string
	dialer    *websocket.Dialer
	heartbeat time.Duration
	logger    *slog.Logger
}

type Option func(*Client)

func WithHeartbeat(d time.Duration) Option { return func(c *Client) { c.heartbeat = d } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient derives the websocket endpoint from the backend's HTTP base URL.
func NewClient(baseURL, anonKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path += "/realtime/v1/websocket"
	u.RawQuery = url.Values{"apikey": []string{anonKey}, "vsn": []string{protocolVersion}}.Encode()

	c := &Client{
		endpoint:  u.String(),
		dialer:    websocket.DefaultDialer,
		heartbeat: defaultHeartbeat,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subscribe joins the channel for sub and streams its changes until ctx is
// cancelled or the connection drops. The returned channel is closed then.
func (c *Client) Subscribe(ctx context.Context, sub Subscription) (<-chan Change, error) {
	if sub.Table == "" {
		return nil, errors.New("realtime: table is required")
	}
	if sub.Schema == "" {
		sub.Schema = "public"
	}
	if sub.Event == "" {
		sub.Event = "*"
	}

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("realtime connection failed: %w", err)
	}

	ch := newChannel(conn, "realtime:"+sub.Schema+":"+sub.Table)
	if err := ch.join(sub); err != nil {
		conn.Close()
		return nil, err
	}
	return ch.start(ctx, c.heartbeat, c.logger), nil
}

type channel struct {
	conn  *websocket.Conn
	topic string
	// closed once the connection has been released
	done chan struct{}

	mu  sync.Mutex // gorilla allows one concurrent writer
	ref int
}

func newChannel(conn *websocket.Conn, topic string) *channel {
	return &channel{conn: conn, topic: topic, done: make(chan struct{})}
}

// start runs the read and heartbeat loops. The connection is released when
// ctx ends or the socket drops, whichever comes first.
func (ch *channel) start(ctx context.Context, heartbeat time.Duration, logger *slog.Logger) <-chan Change {
	changes := make(chan Change, 16)
	dropped := make(chan struct{})
	go func() {
		defer close(dropped)
		ch.readLoop(ctx, changes, logger)
	}()
	go ch.heartbeatLoop(ctx, dropped, heartbeat, logger)
	go func() {
		defer close(ch.done)
		select {
		case <-ctx.Done():
			ch.leave()
		case <-dropped:
			ch.conn.Close()
		}
	}()
	return changes
}

func (ch *channel) send(topic, event string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.ref++
	ref := strconv.Itoa(ch.ref)
	return ref, ch.conn.WriteJSON(message{Topic: topic, Event: event, Payload: data, Ref: ref})
}

func (ch *channel) join(sub Subscription) error {
	change := map[string]string{"event": sub.Event, "schema": sub.Schema, "table": sub.Table}
	if sub.Filter != "" {
		change["filter"] = sub.Filter
	}
	payload := map[string]any{
		"config": map[string]any{
			"broadcast":        map[string]bool{"self": false},
			"presence":         map[string]string{"key": ""},
			"postgres_changes": []map[string]string{change},
		},
	}
	if sub.AccessToken != "" {
		payload["access_token"] = sub.AccessToken
	}

	ref, err := ch.send(ch.topic, "phx_join", payload)
	if err != nil {
		return fmt.Errorf("realtime join failed: %w", err)
	}

	ch.conn.SetReadDeadline(time.Now().Add(joinTimeout))
	defer ch.conn.SetReadDeadline(time.Time{})
	for {
		var msg message
		if err := ch.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("realtime join failed: %w", err)
		}
		if msg.Event != "phx_reply" || msg.Ref != ref {
			continue
		}
		var reply struct {
			Status   string          `json:"status"`
			Response json.RawMessage `json:"response"`
		}
		if err := json.Unmarshal(msg.Payload, &reply); err != nil {
			return fmt.Errorf("realtime join failed: %w", err)
		}
		if reply.Status != "ok" {
			return fmt.Errorf("realtime join rejected: %s", string(reply.Response))
		}
		return nil
	}
}

func (ch *channel) leave() {
	_, _ = ch.send(ch.topic, "phx_leave", map[string]any{})
	ch.mu.Lock()
	_ = ch.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ch.mu.Unlock()
	ch.conn.Close()
}

func (ch *channel) heartbeatLoop(ctx context.Context, dropped <-chan struct{}, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-dropped:
			return
		case <-ticker.C:
			if _, err := ch.send("phoenix", "heartbeat", map[string]any{}); err != nil {
				logger.Debug("realtime heartbeat failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (ch *channel) readLoop(ctx context.Context, out chan<- Change, logger *slog.Logger) {
	defer close(out)
	for {
		var msg message
		if err := ch.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				logger.Warn("realtime connection closed", slog.String("error", err.Error()))
			}
			return
		}
		if msg.Topic != ch.topic {
			continue
		}

		change, ok := decodeChange(msg)
		if !ok {
			continue
		}
		select {
		case out <- change:
		case <-ctx.Done():
			return
		}
	}
}

// decodeChange accepts the postgres_changes envelope and the older
// per-event one (INSERT/UPDATE/DELETE with the record at the top level).
func decodeChange(msg message) (Change, bool) {
	var change Change
	switch msg.Event {
	case "postgres_changes":
		var payload struct {
			Data Change `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return change, false
		}
		change = payload.Data
	case "INSERT", "UPDATE", "DELETE":
		if err := json.Unmarshal(msg.Payload, &change); err != nil {
			return change, false
		}
		if change.Type == "" {
			change.Type = msg.Event
		}
	default:
		return change, false
	}
	return change, true
}
