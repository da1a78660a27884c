package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ShivamD-ops/AlgoTradeCompanion/broker"
	"github.com/ShivamD-ops/AlgoTradeCompanion/broker/smartapi"
	"github.com/ShivamD-ops/AlgoTradeCompanion/broker/stream"
)

func (s *Server) handleLogin(c *gin.Context) {
	respond(c, s.session.Authenticate(c.Request.Context()))
}

func (s *Server) handleProfile(c *gin.Context) {
	respond(c, s.session.Profile(c.Request.Context()))
}

func (s *Server) handleLogout(c *gin.Context) {
	respond(c, s.session.Logout(c.Request.Context()))
}

func (s *Server) handleHoldings(c *gin.Context) {
	respond(c, s.gateway.Holdings(c.Request.Context()))
}

func (s *Server) handlePositions(c *gin.Context) {
	respond(c, s.gateway.Positions(c.Request.Context()))
}

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var params smartapi.OrderParams
	if err := c.ShouldBindJSON(&params); err != nil || len(params) == 0 {
		badRequest(c, "Invalid order parameters")
		return
	}
	respond(c, s.gateway.PlaceOrder(c.Request.Context(), params))
}

func (s *Server) handleModifyOrder(c *gin.Context) {
	var params smartapi.OrderParams
	if err := c.ShouldBindJSON(&params); err != nil || len(params) == 0 {
		badRequest(c, "Invalid order parameters")
		return
	}
	respond(c, s.gateway.ModifyOrder(c.Request.Context(), c.Param("order_id"), params))
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	respond(c, s.gateway.CancelOrder(c.Request.Context(), c.Param("order_id"), c.Query("variety")))
}

func (s *Server) handleOrderBook(c *gin.Context) {
	respond(c, s.gateway.OrderBook(c.Request.Context()))
}

func (s *Server) handleTradeBook(c *gin.Context) {
	respond(c, s.gateway.TradeBook(c.Request.Context()))
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		badRequest(c, "Search term required")
		return
	}
	respond(c, s.gateway.Search(c.Request.Context(), c.Query("exchange"), query))
}

func (s *Server) handleLTP(c *gin.Context) {
	symbol := c.Query("symbol")
	token := c.Query("token")
	if symbol == "" || token == "" {
		badRequest(c, "Symbol and token required")
		return
	}
	respond(c, s.gateway.LTP(c.Request.Context(), c.Query("exchange"), symbol, token))
}

func (s *Server) handleHistorical(c *gin.Context) {
	token := c.Query("token")
	fromDate := c.Query("from_date")
	toDate := c.Query("to_date")
	if token == "" || fromDate == "" || toDate == "" {
		badRequest(c, "Token, from_date, and to_date required")
		return
	}
	respond(c, s.gateway.Historical(c.Request.Context(), smartapi.HistoricalParams{
		Exchange:    c.DefaultQuery("exchange", "NSE"),
		SymbolToken: token,
		Interval:    c.DefaultQuery("duration", "ONE_DAY"),
		FromDate:    fromDate,
		ToDate:      toDate,
	}))
}

func (s *Server) handleStreamStart(c *gin.Context) {
	var subs []stream.Subscription
	if err := c.ShouldBindJSON(&subs); err != nil || len(subs) == 0 {
		badRequest(c, "Tokens required")
		return
	}
	respond(c, s.stream.Start(subs))
}

func (s *Server) handleStreamStatus(c *gin.Context) {
	c.JSON(http.StatusOK, broker.SuccessEnvelope(s.stream.Status()))
}

func (s *Server) handleLive(c *gin.Context) {
	respond(c, s.stream.Live(c.Param("token")))
}
