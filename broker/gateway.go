package broker

import (
	"context"
	"log/slog"

	"github.com/ShivamD-ops/AlgoTradeCompanion/broker/smartapi"
)

// DefaultVariety is the order category assumed when a cancel request does
// not specify one.
const DefaultVariety = "NORMAL"

// DefaultExchange is assumed for search and quote requests without an
// explicit exchange.
const DefaultExchange = "NSE"

// Gateway is the stateless pass-through layer for trading and market-data
// operations. Every operation requires an active session, forwards the
// normalized parameters to the broker, and shapes the result into an
// envelope. No fault escapes as an error value.
type Gateway struct {
	session *Session
	client  API
	logger  *slog.Logger
}

// NewGateway creates a trading gateway bound to the shared session.
func NewGateway(session *Session, client API, logger *slog.Logger) *Gateway {
	return &Gateway{session: session, client: client, logger: logger}
}

// guard returns the session's auth token, or ErrNotAuthenticated if no
// active session is held. No remote call happens on guard failure.
func (g *Gateway) guard() (string, error) {
	auth, _, active := g.session.Tokens()
	if !active {
		return "", ErrNotAuthenticated
	}
	return auth, nil
}

// passthrough runs a read-style remote call and wraps the full remote
// response in the envelope.
func (g *Gateway) passthrough(op string, call func(authToken string) (*smartapi.Response, error)) Envelope {
	auth, err := g.guard()
	if err != nil {
		return ErrorEnvelope(err)
	}
	resp, err := call(auth)
	if err != nil {
		g.logger.Error(op+" failed", "error", err)
		return ErrorEnvelope(&TransportError{Op: op, Err: err})
	}
	return SuccessEnvelope(resp)
}

// Holdings fetches the portfolio holdings.
func (g *Gateway) Holdings(ctx context.Context) Envelope {
	return g.passthrough("Holdings fetch", func(auth string) (*smartapi.Response, error) {
		return g.client.Holdings(ctx, auth)
	})
}

// Positions fetches the open positions.
func (g *Gateway) Positions(ctx context.Context) Envelope {
	return g.passthrough("Positions fetch", func(auth string) (*smartapi.Response, error) {
		return g.client.Positions(ctx, auth)
	})
}

// OrderBook fetches the day's orders.
func (g *Gateway) OrderBook(ctx context.Context) Envelope {
	return g.passthrough("Order book fetch", func(auth string) (*smartapi.Response, error) {
		return g.client.OrderBook(ctx, auth)
	})
}

// TradeBook fetches the day's trades.
func (g *Gateway) TradeBook(ctx context.Context) Envelope {
	return g.passthrough("Trade book fetch", func(auth string) (*smartapi.Response, error) {
		return g.client.TradeBook(ctx, auth)
	})
}

// PlaceOrder submits a new order. The remote's inner status flag is
// interpreted: a rejection inside a successful transport call is an
// OrderRejectedError, which callers must not retry.
func (g *Gateway) PlaceOrder(ctx context.Context, params smartapi.OrderParams) Envelope {
	auth, err := g.guard()
	if err != nil {
		return ErrorEnvelope(err)
	}
	resp, err := g.client.PlaceOrder(ctx, auth, params)
	if err != nil {
		g.logger.Error("Order placement failed", "error", err)
		return ErrorEnvelope(&TransportError{Op: "Order placement", Err: err})
	}
	if !resp.Status {
		rejection := &OrderRejectedError{Op: "Order placement", Reason: resp.RemoteMessage()}
		g.logger.Warn("Order rejected by broker", "error", rejection)
		return ErrorEnvelope(rejection)
	}
	g.logger.Info("Order placed", "data", string(resp.Data))
	return SuccessEnvelope(resp.Data)
}

// ModifyOrder modifies an existing order, with the same inner-status
// interpretation as PlaceOrder.
func (g *Gateway) ModifyOrder(ctx context.Context, orderID string, params smartapi.OrderParams) Envelope {
	auth, err := g.guard()
	if err != nil {
		return ErrorEnvelope(err)
	}
	// Copied so the caller's map is not mutated.
	body := make(smartapi.OrderParams, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	body["orderid"] = orderID

	resp, err := g.client.ModifyOrder(ctx, auth, body)
	if err != nil {
		g.logger.Error("Order modification failed", "error", err)
		return ErrorEnvelope(&TransportError{Op: "Order modification", Err: err})
	}
	if !resp.Status {
		rejection := &OrderRejectedError{Op: "Order modification", Reason: resp.RemoteMessage()}
		g.logger.Warn("Order rejected by broker", "error", rejection)
		return ErrorEnvelope(rejection)
	}
	return SuccessEnvelope(resp.Data)
}

// CancelOrder cancels an order. Variety defaults to NORMAL. The remote's
// own status/message pair is surfaced directly.
func (g *Gateway) CancelOrder(ctx context.Context, orderID, variety string) Envelope {
	auth, err := g.guard()
	if err != nil {
		return ErrorEnvelope(err)
	}
	if variety == "" {
		variety = DefaultVariety
	}
	resp, err := g.client.CancelOrder(ctx, auth, orderID, variety)
	if err != nil {
		g.logger.Error("Order cancellation failed", "error", err)
		return ErrorEnvelope(&TransportError{Op: "Order cancellation", Err: err})
	}
	status := StatusSuccess
	if !resp.Status {
		status = StatusError
	}
	return Envelope{Status: status, Data: resp.Data, Message: resp.Message}
}

// Historical fetches candle data. Range ordering and span limits are the
// broker's to validate; its errors surface as-is.
func (g *Gateway) Historical(ctx context.Context, params smartapi.HistoricalParams) Envelope {
	return g.passthrough("Historical data fetch", func(auth string) (*smartapi.Response, error) {
		return g.client.CandleData(ctx, auth, params)
	})
}

// Search looks up instruments matching the query on the given exchange.
func (g *Gateway) Search(ctx context.Context, exchange, query string) Envelope {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return g.passthrough("Scrip search", func(auth string) (*smartapi.Response, error) {
		return g.client.SearchScrip(ctx, auth, smartapi.SearchParams{
			Exchange:    exchange,
			SearchScrip: query,
		})
	})
}

// LTP fetches the last traded price for one instrument.
func (g *Gateway) LTP(ctx context.Context, exchange, tradingSymbol, symbolToken string) Envelope {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return g.passthrough("LTP fetch", func(auth string) (*smartapi.Response, error) {
		return g.client.LTP(ctx, auth, smartapi.LTPParams{
			Exchange:      exchange,
			TradingSymbol: tradingSymbol,
			SymbolToken:   symbolToken,
		})
	})
}
