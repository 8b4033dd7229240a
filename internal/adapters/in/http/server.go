// Package http is the REST and live-connection surface. Actor identity arrives
// pre-authenticated from the gateway in the X-Actor-Role and X-Actor-Id headers.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/realtime/hub"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers groups the use cases the server exposes.
type Handlers struct {
	PlaceOrder           commands.PlaceOrderCommandHandler
	AdvanceStatus        commands.AdvanceStatusCommandHandler
	ClaimOrder           commands.ClaimOrderCommandHandler
	SetRiderAvailability commands.SetRiderAvailabilityCommandHandler

	GetOrder            queries.GetOrderQueryHandler
	ListActiveOrders    queries.ListActiveOrdersQueryHandler
	ListAvailableOrders queries.ListAvailableOrdersQueryHandler
	GetOnlineRiders     queries.GetOnlineRidersQueryHandler
}

type LiveConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	MaxFrameSize int64
}

func DefaultLiveConfig() LiveConfig {
	return LiveConfig{
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		MaxFrameSize: 4096,
	}
}

// Server implements the HTTP handlers on top of the application use cases.
type Server struct {
	handlers Handlers
	hub      *hub.Hub
	live     LiveConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewServer(handlers Handlers, h *hub.Hub, live LiveConfig, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		hub:      h,
		live:     live,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are checked by the gateway that authenticates the actor.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "http"),
	}
}

// NewEcho builds the router with middleware and every route registered.
func NewEcho(s *Server, docs *Docs) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.ErrorContext(c.Request().Context(), "request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.DebugContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if docs != nil {
		docs.Register(e)
	}

	v1 := e.Group("/api/v1")
	v1.POST("/orders", s.PlaceOrder)
	v1.GET("/orders", s.ListActiveOrders)
	v1.GET("/orders/available", s.ListAvailableOrders)
	v1.GET("/orders/:id", s.GetOrder)
	v1.POST("/orders/:id/status", s.AdvanceStatus)
	v1.POST("/orders/:id/claim", s.ClaimOrder)
	v1.GET("/riders/online", s.GetOnlineRiders)
	v1.PUT("/riders/:id/availability", s.SetRiderAvailability)
	v1.GET("/ws", s.Live)

	return e
}
