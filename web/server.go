// Package web is the HTTP surface of the bridge. It only maps verbs and
// paths onto the core operations, validates presence of required
// parameters, and picks status codes; all business behavior lives in the
// broker packages and every response body is the uniform envelope.
package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ShivamD-ops/AlgoTradeCompanion/broker"
	"github.com/ShivamD-ops/AlgoTradeCompanion/broker/stream"
	"github.com/ShivamD-ops/AlgoTradeCompanion/ops"
)

// Config holds the wired core services for the HTTP surface.
type Config struct {
	Session *broker.Session
	Gateway *broker.Gateway
	Stream  *stream.Service
	Logs    *ops.LogBuffer // optional - enables /ops/logs
	Logger  *slog.Logger
}

// Server exposes the bridge operations over HTTP.
type Server struct {
	session *broker.Session
	gateway *broker.Gateway
	stream  *stream.Service
	logs    *ops.LogBuffer
	logger  *slog.Logger
}

// NewServer creates the HTTP surface.
func NewServer(cfg Config) *Server {
	return &Server{
		session: cfg.Session,
		gateway: cfg.Gateway,
		stream:  cfg.Stream,
		logs:    cfg.Logs,
		logger:  cfg.Logger,
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), RequestID(), AccessLog(s.logger))

	r.GET("/health", s.handleHealth)

	auth := r.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.GET("/profile", s.handleProfile)
		auth.POST("/logout", s.handleLogout)
	}

	portfolio := r.Group("/portfolio")
	{
		portfolio.GET("/holdings", s.handleHoldings)
		portfolio.GET("/positions", s.handlePositions)
	}

	r.POST("/orders", s.handlePlaceOrder)
	r.GET("/orders", s.handleOrderBook)
	r.PUT("/orders/:order_id", s.handleModifyOrder)
	r.DELETE("/orders/:order_id", s.handleCancelOrder)
	r.GET("/trades", s.handleTradeBook)

	market := r.Group("/market")
	{
		market.GET("/search", s.handleSearch)
		market.GET("/ltp", s.handleLTP)
		market.GET("/historical", s.handleHistorical)
		market.POST("/websocket/start", s.handleStreamStart)
		market.GET("/websocket/status", s.handleStreamStatus)
		market.GET("/live/:token", s.handleLive)
	}

	if s.logs != nil {
		r.GET("/ops/logs", s.handleLogs)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, broker.ErrorMessage("Endpoint not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, broker.ErrorMessage("Method not allowed"))
	})

	return r
}

// respond writes the envelope with a status code derived from it. Guard
// failures map to 401; everything else the core reports keeps a 200 with
// the envelope carrying the error, matching the bridge contract where
// 4xx/5xx are reserved for the HTTP layer's own decisions.
func respond(c *gin.Context, env broker.Envelope) {
	status := http.StatusOK
	if env.AuthFailure() {
		status = http.StatusUnauthorized
	}
	c.JSON(status, env)
}

// badRequest rejects caller input before it reaches the core.
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, broker.ErrorMessage(message))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "AngelOne API Bridge",
	})
}

func (s *Server) handleLogs(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", "100"))
	if err != nil || n <= 0 {
		badRequest(c, "n must be a positive integer")
		return
	}
	c.JSON(http.StatusOK, broker.SuccessEnvelope(s.logs.Recent(n)))
}
