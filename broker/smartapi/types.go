// Package smartapi is a minimal client for the Angel One SmartAPI REST
// endpoints used by the bridge. Every endpoint wraps its payload in the
// same {status, message, errorcode, data} shape.
package smartapi

import (
	"encoding/json"
	"fmt"
)

// Response is the SmartAPI wrapper common to all endpoints. Status is the
// broker's own application-level flag: a transport-level 200 with
// Status=false means the action was rejected, not that the call failed.
type Response struct {
	Status    bool            `json:"status"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorcode,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// RemoteMessage returns the broker's message, falling back to the error
// code or a generic string so callers always have something to surface.
func (r *Response) RemoteMessage() string {
	switch {
	case r.Message != "":
		return r.Message
	case r.ErrorCode != "":
		return "error code " + r.ErrorCode
	default:
		return "Unknown error"
	}
}

// APIError is an explicit rejection from the broker (Status=false on an
// otherwise-successful transport call).
type APIError struct {
	Message   string
	ErrorCode string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.ErrorCode)
	}
	return e.Message
}

// SessionTokens is the payload of a successful loginByPassword call.
type SessionTokens struct {
	JWTToken     string `json:"jwtToken"`
	RefreshToken string `json:"refreshToken"`
	FeedToken    string `json:"feedToken"`
}

// OrderParams is the caller-supplied order parameter object. It is
// forwarded to the broker as-is; the bridge does not interpret order
// fields beyond the identifiers it fills in itself.
type OrderParams map[string]any

// HistoricalParams selects a candle range for one instrument.
type HistoricalParams struct {
	Exchange    string `json:"exchange"`
	SymbolToken string `json:"symboltoken"`
	Interval    string `json:"interval"`
	FromDate    string `json:"fromdate"`
	ToDate      string `json:"todate"`
}

// SearchParams is an instrument search request.
type SearchParams struct {
	Exchange    string `json:"exchange"`
	SearchScrip string `json:"searchscrip"`
}

// LTPParams requests the last traded price of one instrument.
type LTPParams struct {
	Exchange      string `json:"exchange"`
	TradingSymbol string `json:"tradingsymbol"`
	SymbolToken   string `json:"symboltoken"`
}
