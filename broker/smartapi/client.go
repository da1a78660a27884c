package smartapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is Angel One's production SmartAPI host.
const DefaultBaseURL = "https://apiconnect.angelone.in"

// Endpoint paths, per the SmartAPI contract.
const (
	loginPath       = "/rest/auth/angelbroking/user/v1/loginByPassword"
	profilePath     = "/rest/secure/angelbroking/user/v1/getProfile"
	logoutPath      = "/rest/secure/angelbroking/user/v1/logout"
	holdingsPath    = "/rest/secure/angelbroking/portfolio/v1/getAllHolding"
	positionsPath   = "/rest/secure/angelbroking/order/v1/getPosition"
	placeOrderPath  = "/rest/secure/angelbroking/order/v1/placeOrder"
	modifyOrderPath = "/rest/secure/angelbroking/order/v1/modifyOrder"
	cancelOrderPath = "/rest/secure/angelbroking/order/v1/cancelOrder"
	orderBookPath   = "/rest/secure/angelbroking/order/v1/getOrderBook"
	tradeBookPath   = "/rest/secure/angelbroking/order/v1/getTradeBook"
	candleDataPath  = "/rest/secure/angelbroking/historical/v1/getCandleData"
	searchScripPath = "/rest/secure/angelbroking/order/v1/searchScrip"
	ltpDataPath     = "/rest/secure/angelbroking/order/v1/getLtpData"
)

const defaultTimeout = 10 * time.Second

// Config holds configuration for creating a new Client.
type Config struct {
	BaseURL string        // optional - defaults to DefaultBaseURL
	APIKey  string        // required - sent as X-PrivateKey on every call
	Timeout time.Duration // optional - defaults to 10s
	Logger  *slog.Logger  // optional
}

// Client talks to the SmartAPI REST endpoints. It is stateless: session
// tokens are supplied per call by the owner of the session.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New creates a new SmartAPI client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Content-Type":     "application/json",
			"Accept":           "application/json",
			"X-UserType":       "USER",
			"X-SourceID":       "WEB",
			"X-ClientLocalIP":  "127.0.0.1",
			"X-ClientPublicIP": "127.0.0.1",
			"X-MACAddress":     "00:00:00:00:00:00",
			"X-PrivateKey":     cfg.APIKey,
		})

	return &Client{http: httpClient, logger: logger}
}

// execute runs one request and decodes the SmartAPI wrapper. A non-nil
// error means the transport failed or the body was not a valid wrapper;
// Status=false rejections are left to the caller to interpret.
func (c *Client) execute(req *resty.Request, method, path string) (*Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("smartapi %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("smartapi %s %s: unexpected HTTP status %s", method, path, resp.Status())
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("smartapi %s %s: malformed response: %w", method, path, err)
	}
	return &out, nil
}

// secure returns a request carrying the session's Authorization header.
func (c *Client) secure(ctx context.Context, authToken string) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+authToken)
}

// Login authenticates with client code, password and a fresh TOTP code.
// A broker-side rejection is returned as an *APIError.
func (c *Client) Login(ctx context.Context, clientCode, password, totp string) (*SessionTokens, error) {
	body := map[string]string{
		"clientcode": clientCode,
		"password":   password,
		"totp":       totp,
	}
	resp, err := c.execute(c.http.R().SetContext(ctx).SetBody(body), "POST", loginPath)
	if err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, &APIError{Message: resp.RemoteMessage(), ErrorCode: resp.ErrorCode}
	}

	var tokens SessionTokens
	if err := json.Unmarshal(resp.Data, &tokens); err != nil {
		return nil, fmt.Errorf("smartapi login: malformed token payload: %w", err)
	}
	if tokens.JWTToken == "" {
		return nil, &APIError{Message: "login response missing jwtToken"}
	}
	if tokens.FeedToken == "" {
		return nil, &APIError{Message: "login response missing feedToken"}
	}
	return &tokens, nil
}

// Profile fetches the user profile for the session.
func (c *Client) Profile(ctx context.Context, authToken, refreshToken string) (*Response, error) {
	req := c.secure(ctx, authToken).SetQueryParam("refreshToken", refreshToken)
	return c.execute(req, "GET", profilePath)
}

// Logout terminates the broker session for the given client code.
func (c *Client) Logout(ctx context.Context, authToken, clientCode string) (*Response, error) {
	req := c.secure(ctx, authToken).SetBody(map[string]string{"clientcode": clientCode})
	return c.execute(req, "POST", logoutPath)
}

// Holdings fetches the portfolio holdings.
func (c *Client) Holdings(ctx context.Context, authToken string) (*Response, error) {
	return c.execute(c.secure(ctx, authToken), "GET", holdingsPath)
}

// Positions fetches the open positions.
func (c *Client) Positions(ctx context.Context, authToken string) (*Response, error) {
	return c.execute(c.secure(ctx, authToken), "GET", positionsPath)
}

// PlaceOrder submits a new order.
func (c *Client) PlaceOrder(ctx context.Context, authToken string, params OrderParams) (*Response, error) {
	return c.execute(c.secure(ctx, authToken).SetBody(params), "POST", placeOrderPath)
}

// ModifyOrder modifies an existing order.
func (c *Client) ModifyOrder(ctx context.Context, authToken string, params OrderParams) (*Response, error) {
	return c.execute(c.secure(ctx, authToken).SetBody(params), "POST", modifyOrderPath)
}

// CancelOrder cancels an order of the given variety.
func (c *Client) CancelOrder(ctx context.Context, authToken, orderID, variety string) (*Response, error) {
	body := map[string]string{"orderid": orderID, "variety": variety}
	return c.execute(c.secure(ctx, authToken).SetBody(body), "POST", cancelOrderPath)
}

// OrderBook fetches the day's orders.
func (c *Client) OrderBook(ctx context.Context, authToken string) (*Response, error) {
	return c.execute(c.secure(ctx, authToken), "GET", orderBookPath)
}

// TradeBook fetches the day's trades.
func (c *Client) TradeBook(ctx context.Context, authToken string) (*Response, error) {
	return c.execute(c.secure(ctx, authToken), "GET", tradeBookPath)
}

// CandleData fetches historical candles. Date-range validation is the
// broker's job; its errors surface as-is.
func (c *Client) CandleData(ctx context.Context, authToken string, params HistoricalParams) (*Response, error) {
	return c.execute(c.secure(ctx, authToken).SetBody(params), "POST", candleDataPath)
}

// SearchScrip searches instruments on an exchange.
func (c *Client) SearchScrip(ctx context.Context, authToken string, params SearchParams) (*Response, error) {
	return c.execute(c.secure(ctx, authToken).SetBody(params), "POST", searchScripPath)
}

// LTP fetches the last traded price of one instrument.
func (c *Client) LTP(ctx context.Context, authToken string, params LTPParams) (*Response, error) {
	return c.execute(c.secure(ctx, authToken).SetBody(params), "POST", ltpDataPath)
}
