package broker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/ShivamD-ops/AlgoTradeCompanion/broker/smartapi"
)

// testLogger creates a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// validCreds returns a complete credential set. The TOTP secret must be
// valid base32 so code generation succeeds.
func validCreds() Credentials {
	return Credentials{
		APIKey:     "K",
		Username:   "U",
		Password:   "P",
		TOTPSecret: "JBSWY3DPEHPK3PXP",
		ClientCode: "C",
	}
}

// fakeAPI implements the API interface with canned responses and records
// every call so tests can assert on call counts and forwarded arguments.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	loginTokens     *smartapi.SessionTokens
	loginErr        error
	loginClientCode string
	loginPassword   string
	loginTOTP       string

	profileAuth    string
	profileRefresh string

	logoutAuth       string
	logoutClientCode string
	logoutErr        error

	resp *smartapi.Response
	err  error

	lastOrderParams smartapi.OrderParams
	lastOrderID     string
	lastVariety     string
	lastHistorical  smartapi.HistoricalParams
	lastSearch      smartapi.SearchParams
	lastLTP         smartapi.LTPParams
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: make(map[string]int),
		loginTokens: &smartapi.SessionTokens{
			JWTToken:     "J",
			RefreshToken: "R",
			FeedToken:    "F",
		},
		resp: &smartapi.Response{
			Status:  true,
			Message: "SUCCESS",
			Data:    json.RawMessage(`{"ok":true}`),
		},
	}
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeAPI) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeAPI) Login(_ context.Context, clientCode, password, totp string) (*smartapi.SessionTokens, error) {
	f.record("login")
	f.mu.Lock()
	f.loginClientCode = clientCode
	f.loginPassword = password
	f.loginTOTP = totp
	f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginTokens, nil
}

func (f *fakeAPI) Profile(_ context.Context, authToken, refreshToken string) (*smartapi.Response, error) {
	f.record("profile")
	f.mu.Lock()
	f.profileAuth = authToken
	f.profileRefresh = refreshToken
	f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeAPI) Logout(_ context.Context, authToken, clientCode string) (*smartapi.Response, error) {
	f.record("logout")
	f.mu.Lock()
	f.logoutAuth = authToken
	f.logoutClientCode = clientCode
	f.mu.Unlock()
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	return f.resp, nil
}

func (f *fakeAPI) Holdings(_ context.Context, _ string) (*smartapi.Response, error) {
	f.record("holdings")
	return f.resp, f.err
}

func (f *fakeAPI) Positions(_ context.Context, _ string) (*smartapi.Response, error) {
	f.record("positions")
	return f.resp, f.err
}

func (f *fakeAPI) PlaceOrder(_ context.Context, _ string, params smartapi.OrderParams) (*smartapi.Response, error) {
	f.record("placeOrder")
	f.mu.Lock()
	f.lastOrderParams = params
	f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeAPI) ModifyOrder(_ context.Context, _ string, params smartapi.OrderParams) (*smartapi.Response, error) {
	f.record("modifyOrder")
	f.mu.Lock()
	f.lastOrderParams = params
	f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeAPI) CancelOrder(_ context.Context, _ string, orderID, variety string) (*smartapi.Response, error) {
	f.record("cancelOrder")
	f.mu.Lock()
	f.lastOrderID = orderID
	f.lastVariety = variety
	f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeAPI) OrderBook(_ context.Context, _ string) (*smartapi.Response, error) {
	f.record("orderBook")
	return f.resp, f.err
}

func (f *fakeAPI) TradeBook(_ context.Context, _ string) (*smartapi.Response, error) {
	f.record("tradeBook")
	return f.resp, f.err
}

func (f *fakeAPI) CandleData(_ context.Context, _ string, params smartapi.HistoricalParams) (*smartapi.Response, error) {
	f.record("candleData")
	f.mu.Lock()
	f.lastHistorical = params
	f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeAPI) SearchScrip(_ context.Context, _ string, params smartapi.SearchParams) (*smartapi.Response, error) {
	f.record("searchScrip")
	f.mu.Lock()
	f.lastSearch = params
	f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeAPI) LTP(_ context.Context, _ string, params smartapi.LTPParams) (*smartapi.Response, error) {
	f.record("ltp")
	f.mu.Lock()
	f.lastLTP = params
	f.mu.Unlock()
	return f.resp, f.err
}

// newTestSession creates a session manager over the fake client.
func newTestSession(creds Credentials, api API) *Session {
	s, err := NewSession(SessionConfig{
		Credentials: creds,
		Client:      api,
		Logger:      testLogger(),
	})
	if err != nil {
		panic("failed to create test session: " + err.Error())
	}
	return s
}
