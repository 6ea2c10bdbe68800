package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Event is one frame from the server's event stream.
type Event struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	TS      string          `json:"ts"`
	Payload json.RawMessage `json:"payload"`
}

// WatchOptions filter the event stream.
type WatchOptions struct {
	// Phone, when set, keeps that user online while the stream is open.
	Phone string
	// Kind is a prefix such as "message." or "presence.".
	Kind string
}

// Watch streams events to fn until ctx is done, the server closes the
// stream, or fn returns an error. A cancelled ctx returns nil.
func (c *Client) Watch(ctx context.Context, opts WatchOptions, fn func(Event) error) error {
	u, err := url.Parse(c.baseURL + "/events")
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	q := u.Query()
	if opts.Phone != "" {
		q.Set("phone", opts.Phone)
	}
	if opts.Kind != "" {
		q.Set("kind", opts.Kind)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial events: %w", err)
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var evt Event
		if err := conn.ReadJSON(&evt); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
}
