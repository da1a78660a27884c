// Package stream manages the single live-data websocket connection: it
// dials with the session's feed credentials, issues one subscription for
// a fixed token set, and maintains a last-write-wins cache of the latest
// payload per instrument token.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ShivamD-ops/AlgoTradeCompanion/broker"
)

// TokenProvider yields the current session tokens. Implemented by
// broker.Session.
type TokenProvider interface {
	Tokens() (authToken, feedToken string, active bool)
}

const dialTimeout = 15 * time.Second

// Config holds configuration for creating a new stream Service.
type Config struct {
	Dialer     Dialer        // required
	Session    TokenProvider // required
	APIKey     string
	ClientCode string
	Logger     *slog.Logger // optional - defaults to slog.Default()
	Mode       Mode         // optional - defaults to ModeFull
}

// Service owns the background live-data connection. Only one connection
// is held at a time; Start replaces it, closing and joining the previous
// one first so no socket leaks. The cache outlives connections: entries
// are kept (stale but available) after a disconnect.
type Service struct {
	dialer     Dialer
	session    TokenProvider
	apiKey     string
	clientCode string
	logger     *slog.Logger
	mode       Mode

	mu          sync.RWMutex
	state       State
	conn        Conn
	done        chan struct{} // closed when the read loop exits
	subs        []Subscription
	connectedAt time.Time
	cache       map[string]json.RawMessage
}

// New creates a stream Service.
func New(cfg Config) (*Service, error) {
	if cfg.Dialer == nil {
		return nil, errors.New("dialer is required")
	}
	if cfg.Session == nil {
		return nil, errors.New("session is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := cfg.Mode
	if mode == 0 {
		mode = ModeFull
	}
	return &Service{
		dialer:     cfg.Dialer,
		session:    cfg.Session,
		apiKey:     cfg.APIKey,
		clientCode: cfg.ClientCode,
		logger:     logger,
		mode:       mode,
		cache:      make(map[string]json.RawMessage),
	}, nil
}

// Start opens the live-data connection for the given token set. It is
// fire-and-forget: the dial, subscribe and read loop all run on one
// background goroutine, and Start returns as soon as that goroutine is
// launched. A previous connection, if any, is closed and joined first.
func (s *Service) Start(subs []Subscription) broker.Envelope {
	auth, feed, active := s.session.Tokens()
	if !active || auth == "" || feed == "" {
		return broker.ErrorEnvelope(broker.ErrNotAuthenticated)
	}
	if len(subs) == 0 {
		return broker.ErrorEnvelope(&broker.InvalidRequestError{Reason: "At least one token is required"})
	}

	s.closeCurrent()

	subsCopy := make([]Subscription, len(subs))
	copy(subsCopy, subs)
	done := make(chan struct{})

	s.mu.Lock()
	s.state = Connecting
	s.subs = subsCopy
	s.done = done
	s.mu.Unlock()

	go s.run(Auth{
		AuthToken:  auth,
		APIKey:     s.apiKey,
		ClientCode: s.clientCode,
		FeedToken:  feed,
	}, subsCopy, done)

	s.logger.Info("Live data connection starting", "tokens", len(subsCopy))
	return broker.SuccessMessage("Live data connection started", nil)
}

// closeCurrent closes the held connection, if any, and waits for its read
// loop to exit.
func (s *Service) closeCurrent() {
	s.mu.Lock()
	conn := s.conn
	done := s.done
	s.conn = nil
	s.done = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if done != nil {
		<-done
	}
}

// run is the connection lifecycle: dial, subscribe once, then consume
// messages until the connection dies or is closed.
func (s *Service) run(auth Auth, subs []Subscription, done chan struct{}) {
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	conn, err := s.dialer.Dial(ctx, auth)
	cancel()
	if err != nil {
		s.logger.Error("Live data connection failed", "error", err)
		s.exit(done)
		return
	}

	s.mu.Lock()
	// A Shutdown or replacing Start may have happened while dialing.
	if s.done != done {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.state = Connected
	s.connectedAt = time.Now()
	s.mu.Unlock()
	s.logger.Info("Live data connection opened")

	if err := conn.WriteJSON(newSubscribeRequest(s.mode, subs)); err != nil {
		s.logger.Error("Subscribe failed", "error", err)
		_ = conn.Close()
		s.exit(done)
		return
	}
	s.logger.Info("Subscribed to live data", "tokens", len(subs), "mode", int(s.mode))

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("Live data connection closed", "error", err)
			s.exit(done)
			return
		}
		s.handleMessage(data)
	}
}

// exit records the end of this connection's read loop. If the service
// was shut down (or the loop was superseded by a newer Start) the state
// is left alone; otherwise it falls back to Disconnected. No
// auto-reconnect: a re-Start is the caller's decision.
func (s *Service) exit(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.conn = nil
	if s.state != Closed {
		s.state = Disconnected
	}
}

// handleMessage parses one inbound message and overwrites the cache entry
// for its token. Malformed or token-less messages are logged and dropped.
func (s *Service) handleMessage(data []byte) {
	var probe struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		s.logger.Warn("Discarding malformed live data message", "error", err)
		return
	}
	if probe.Token == "" {
		s.logger.Debug("Ignoring live data message without token")
		return
	}

	payload := make(json.RawMessage, len(data))
	copy(payload, data)

	s.mu.Lock()
	s.cache[probe.Token] = payload
	s.mu.Unlock()
	s.logger.Debug("Live data received", "token", probe.Token)
}

// Live returns the last payload received for the token. Pure cache read:
// it never blocks on the connection and never triggers a fetch.
func (s *Service) Live(token string) broker.Envelope {
	s.mu.RLock()
	payload, ok := s.cache[token]
	s.mu.RUnlock()

	if !ok {
		return broker.ErrorMessage("No live data available for token")
	}
	return broker.SuccessEnvelope(payload)
}

// State returns the current connection state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status returns a snapshot for display.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		State:        s.state.String(),
		CachedTokens: len(s.cache),
	}
	if s.state == Connected {
		st.ConnectedAt = s.connectedAt
		st.Uptime = time.Since(s.connectedAt).String()
	}
	if len(s.subs) > 0 {
		st.Subscriptions = make([]Subscription, len(s.subs))
		copy(st.Subscriptions, s.subs)
	}
	return st
}

// Shutdown deterministically closes the connection and joins the read
// loop. The state becomes Closed; cached data is retained. Invoked by
// logout and by process shutdown.
func (s *Service) Shutdown() {
	s.mu.Lock()
	s.state = Closed
	conn := s.conn
	done := s.done
	s.conn = nil
	s.done = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if done != nil {
		<-done
	}
	s.logger.Info("Live data service shut down")
}
