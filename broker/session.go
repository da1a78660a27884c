package broker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/ShivamD-ops/AlgoTradeCompanion/broker/smartapi"
)

// API is the slice of the SmartAPI client used by the session manager and
// the trading gateway. Narrow on purpose so tests can run against fakes.
type API interface {
	Login(ctx context.Context, clientCode, password, totp string) (*smartapi.SessionTokens, error)
	Profile(ctx context.Context, authToken, refreshToken string) (*smartapi.Response, error)
	Logout(ctx context.Context, authToken, clientCode string) (*smartapi.Response, error)
	Holdings(ctx context.Context, authToken string) (*smartapi.Response, error)
	Positions(ctx context.Context, authToken string) (*smartapi.Response, error)
	PlaceOrder(ctx context.Context, authToken string, params smartapi.OrderParams) (*smartapi.Response, error)
	ModifyOrder(ctx context.Context, authToken string, params smartapi.OrderParams) (*smartapi.Response, error)
	CancelOrder(ctx context.Context, authToken, orderID, variety string) (*smartapi.Response, error)
	OrderBook(ctx context.Context, authToken string) (*smartapi.Response, error)
	TradeBook(ctx context.Context, authToken string) (*smartapi.Response, error)
	CandleData(ctx context.Context, authToken string, params smartapi.HistoricalParams) (*smartapi.Response, error)
	SearchScrip(ctx context.Context, authToken string, params smartapi.SearchParams) (*smartapi.Response, error)
	LTP(ctx context.Context, authToken string, params smartapi.LTPParams) (*smartapi.Response, error)
}

// StreamCloser is implemented by the streaming service so Logout can tear
// down an open live-data connection as a side effect.
type StreamCloser interface {
	Shutdown()
}

// SessionConfig holds configuration for creating a new Session.
type SessionConfig struct {
	Credentials Credentials
	Client      API          // required
	Logger      *slog.Logger // required
}

// Session owns the single authenticated broker session: it performs the
// login, holds the tokens, and guards every authenticated call. Exactly
// one instance exists process-wide and it is shared across requests, so
// all token state is guarded by a single RWMutex. The invariant is
// all-or-nothing: active=true with all three tokens set, or active=false
// with none.
type Session struct {
	creds  Credentials
	client API
	logger *slog.Logger

	mu           sync.RWMutex
	active       bool
	authToken    string
	refreshToken string
	feedToken    string
	stream       StreamCloser
}

// NewSession creates the session manager.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Client == nil {
		return nil, errors.New("smartapi client is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Session{
		creds:  cfg.Credentials,
		client: cfg.Client,
		logger: cfg.Logger,
	}, nil
}

// SetStream registers the streaming service to close on logout. Wired
// after construction because the stream also needs the session for
// tokens.
func (s *Session) SetStream(stream StreamCloser) {
	s.mu.Lock()
	s.stream = stream
	s.mu.Unlock()
}

// Credentials returns the immutable credential set.
func (s *Session) Credentials() Credentials {
	return s.creds
}

// Active reports whether an authenticated session is held.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Tokens returns a copy of the current session tokens. active=false
// means the tokens are absent and must not be used.
func (s *Session) Tokens() (authToken, feedToken string, active bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authToken, s.feedToken, s.active
}

// clear resets the session to the unauthenticated state.
func (s *Session) clear() {
	s.mu.Lock()
	s.active = false
	s.authToken = ""
	s.refreshToken = ""
	s.feedToken = ""
	s.mu.Unlock()
}

// Authenticate performs a full login: credential check, fresh TOTP code,
// loginByPassword, then stores the returned jwt/refresh/feed tokens.
// Calling it while already active performs a fresh login and replaces the
// held tokens. Any failure leaves the session inactive with no tokens.
func (s *Session) Authenticate(ctx context.Context) Envelope {
	if err := s.creds.Validate(); err != nil {
		s.clear()
		s.logger.Error("Authentication failed", "error", err)
		return ErrorEnvelope(err)
	}

	code, err := totp.GenerateCode(s.creds.TOTPSecret, time.Now())
	if err != nil {
		s.clear()
		authErr := &AuthenticationError{Reason: "invalid TOTP secret", Err: err}
		s.logger.Error("Authentication failed", "error", authErr)
		return ErrorEnvelope(authErr)
	}

	tokens, err := s.client.Login(ctx, s.creds.Username, s.creds.Password, code)
	if err != nil {
		s.clear()
		authErr := &AuthenticationError{Reason: err.Error(), Err: err}
		s.logger.Error("Authentication failed", "error", authErr)
		return ErrorEnvelope(authErr)
	}
	// The session only ever goes active with the full token triple.
	if tokens.JWTToken == "" || tokens.FeedToken == "" {
		s.clear()
		authErr := &AuthenticationError{Reason: "broker returned an incomplete token set"}
		s.logger.Error("Authentication failed", "error", authErr)
		return ErrorEnvelope(authErr)
	}

	s.mu.Lock()
	s.active = true
	s.authToken = tokens.JWTToken
	s.refreshToken = tokens.RefreshToken
	s.feedToken = tokens.FeedToken
	s.mu.Unlock()

	s.logger.Info("Angel One authentication successful", "client_code", s.creds.ClientCode)
	return SuccessMessage("Authentication successful", map[string]string{
		"auth_token": tokens.JWTToken,
		"feed_token": tokens.FeedToken,
	})
}

// Profile forwards the refresh token to the broker's profile endpoint and
// passes the remote payload through unmodified.
func (s *Session) Profile(ctx context.Context) Envelope {
	s.mu.RLock()
	active := s.active
	auth := s.authToken
	refresh := s.refreshToken
	s.mu.RUnlock()

	if !active {
		return ErrorEnvelope(ErrNotAuthenticated)
	}

	resp, err := s.client.Profile(ctx, auth, refresh)
	if err != nil {
		s.logger.Error("Profile fetch failed", "error", err)
		return ErrorEnvelope(err)
	}
	return SuccessEnvelope(resp)
}

// Logout terminates the broker session. Local state is always cleared
// first and the streaming connection, if open, is closed; only then is
// the remote termination attempted, and a remote fault is still reported
// as an error envelope. Either way the session is locally dead afterward.
func (s *Session) Logout(ctx context.Context) Envelope {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return ErrorEnvelope(ErrNoActiveSession)
	}
	auth := s.authToken
	stream := s.stream
	s.active = false
	s.authToken = ""
	s.refreshToken = ""
	s.feedToken = ""
	s.mu.Unlock()

	if stream != nil {
		stream.Shutdown()
	}

	resp, err := s.client.Logout(ctx, auth, s.creds.ClientCode)
	if err != nil {
		s.logger.Error("Remote session termination failed", "error", err)
		return ErrorEnvelope(err)
	}

	s.logger.Info("Session terminated", "client_code", s.creds.ClientCode)
	return SuccessMessage("Session terminated", resp)
}
