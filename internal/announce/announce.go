// Package announce publishes the native module catalog to a development
// host over Socket.IO, so tooling attached to the host can show which
// native modules this side provides.
package announce

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/perfbridge/internal/catalog"
	"github.com/vk/perfbridge/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the event the catalog is emitted under.
const DefaultEvent = "modules"

// Config controls where and how the catalog is announced.
type Config struct {
	// URL is the Socket.IO endpoint, including its path, e.g.
	// "ws://localhost:8081/socket.io/".
	URL       string
	Namespace string
	// Event defaults to DefaultEvent.
	Event string
	// AckEvent, when set, makes Announce wait for the host to emit this
	// event back before returning.
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Payload is the message sent to the host.
type Payload struct {
	ContextID string               `json:"contextId"`
	Modules   []catalog.Descriptor `json:"modules"`
}

// NewPayload builds a payload listing every module of cat in name order.
func NewPayload(contextID string, cat *catalog.Catalog) Payload {
	p := Payload{ContextID: contextID, Modules: make([]catalog.Descriptor, 0, cat.Len())}
	for _, name := range cat.Names() {
		d, _ := cat.Lookup(name)
		p.Modules = append(p.Modules, d)
	}
	return p
}

// wire converts the payload into the generic JSON shape the Socket.IO
// encoder expects.
func (p Payload) wire() (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Announce connects to the host, emits the payload and disconnects. It
// returns once the payload is sent, or once the acknowledgement arrives if
// cfg.AckEvent is set.
func Announce(ctx context.Context, cfg Config, payload Payload) error {
	if cfg.Event == "" {
		cfg.Event = DefaultEvent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	logger := ctxlog.FromContext(ctx).With("component", "announce", "url", cfg.URL, "event", cfg.Event)
	logger.Debug("Announcer started")
	defer logger.Debug("Announcer finished")

	data, err := payload.wire()
	if err != nil {
		return fmt.Errorf("failed to encode announcement: %w", err)
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse announce URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("announce URL %q must include a scheme and host", cfg.URL)
	}

	opCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	var connected atomic.Bool
	io.On(types.EventName("connect"), func(...any) {
		connected.Store(true)
		logger.Info("Connected to host, announcing native modules.", "sid", io.Id(), "modules", len(payload.Modules))
		io.Emit(cfg.Event, data)
		if cfg.AckEvent == "" {
			finish(nil)
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		finish(connectError(errs))
	})
	if cfg.AckEvent != "" {
		io.On(types.EventName(cfg.AckEvent), func(...any) {
			logger.Debug("Host acknowledged announcement.")
			finish(nil)
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if connected.Load() {
			return fmt.Errorf("timed out after connecting while waiting for '%s'", cfg.AckEvent)
		}
		return errors.New("timed out while waiting for initial connection")
	case err := <-done:
		return err
	}
}

func connectError(errs []any) error {
	if len(errs) > 0 {
		if err, ok := errs[0].(error); ok {
			return fmt.Errorf("failed to connect to host: %w", err)
		}
		return fmt.Errorf("failed to connect to host: %v", errs[0])
	}
	return errors.New("failed to connect to host")
}
