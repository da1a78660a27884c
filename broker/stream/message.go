package stream

// Mode selects the depth of data requested for subscribed tokens, per the
// SmartAPI websocket contract.
type Mode int

// Subscription modes.
const (
	ModeLTP   Mode = 1 // last traded price only
	ModeQuote Mode = 2 // quote
	ModeFull  Mode = 3 // quote plus market depth
)

// Wire constants for the one-shot subscribe message.
const (
	correlationID   = "stream_1"
	actionSubscribe = 1
)

// Subscription identifies one instrument on one exchange. The set is
// fixed for the lifetime of a connection.
type Subscription struct {
	Exchange string `json:"exchange" binding:"required"`
	Token    string `json:"token" binding:"required"`
}

// subscribeRequest is the wire shape sent once after connecting:
// {correlationID, action, params:{mode, tokenList:[{exchangeType, tokens}]}}.
type subscribeRequest struct {
	CorrelationID string          `json:"correlationID"`
	Action        int             `json:"action"`
	Params        subscribeParams `json:"params"`
}

type subscribeParams struct {
	Mode      int          `json:"mode"`
	TokenList []tokenGroup `json:"tokenList"`
}

type tokenGroup struct {
	ExchangeType string   `json:"exchangeType"`
	Tokens       []string `json:"tokens"`
}

// newSubscribeRequest groups the requested tokens by exchange, keeping
// first-seen exchange order.
func newSubscribeRequest(mode Mode, subs []Subscription) subscribeRequest {
	groups := make(map[string]*tokenGroup)
	var order []string
	for _, sub := range subs {
		g, ok := groups[sub.Exchange]
		if !ok {
			g = &tokenGroup{ExchangeType: sub.Exchange}
			groups[sub.Exchange] = g
			order = append(order, sub.Exchange)
		}
		g.Tokens = append(g.Tokens, sub.Token)
	}

	tokenList := make([]tokenGroup, 0, len(order))
	for _, exchange := range order {
		tokenList = append(tokenList, *groups[exchange])
	}

	return subscribeRequest{
		CorrelationID: correlationID,
		Action:        actionSubscribe,
		Params: subscribeParams{
			Mode:      int(mode),
			TokenList: tokenList,
		},
	}
}
