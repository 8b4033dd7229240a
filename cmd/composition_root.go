package cmd

import (
	"context"
	"log/slog"
	"time"

	"orderflow/api"
	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/amqpfanout"
	"orderflow/internal/adapters/out/eventsink"
	"orderflow/internal/adapters/out/kafkajournal"
	"orderflow/internal/adapters/out/memory"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/rediscache"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/keylock"
	"orderflow/internal/realtime/dispatcher"
	"orderflow/internal/realtime/hub"
	"orderflow/internal/realtime/offers"
	"orderflow/internal/realtime/presence"
	"orderflow/internal/realtime/subscription"

	"github.com/labstack/echo/v4"
)

// CompositionRoot wires the ledger, the realtime core and the transports.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger
	clock  ports.Clock
	policy commands.OfferPolicy

	uowFactory ports.UnitOfWorkFactory
	cache      ports.StatusCache
	sinks      []*eventsink.Async

	registry   *subscription.Registry
	tracker    *presence.Tracker
	dispatcher *dispatcher.Dispatcher
	supervisor *offers.Supervisor
	section    *commands.OrderSection
	hub        *hub.Hub
}

// NewCompositionRoot builds the application. ctx bounds the offer timers.
func NewCompositionRoot(ctx context.Context, cfg Config, infra Infra, logger *slog.Logger) *CompositionRoot {
	c := &CompositionRoot{
		cfg:    cfg,
		logger: logger,
		clock:  ports.ClockFunc(time.Now),
		policy: commands.OfferPolicy{Window: cfg.OfferWindow, MaxReoffers: cfg.MaxReoffers},
	}

	if infra.GormDB != nil {
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(infra.GormDB)
	} else {
		c.uowFactory = memory.NewUnitOfWorkFactory(memory.NewStore())
	}

	if infra.Redis != nil {
		cache := rediscache.New(infra.Redis, cfg.RedisTTL)
		c.cache = cache
		c.sinks = append(c.sinks, cache.Sink(cfg.SinkQueueSize, logger))
	}
	if infra.Kafka != nil {
		c.sinks = append(c.sinks, kafkajournal.New(infra.Kafka, kafkajournal.Config{
			Topic:     cfg.KafkaTopic,
			QueueSize: cfg.SinkQueueSize,
		}, logger))
	}
	if infra.AMQP != nil {
		c.sinks = append(c.sinks, amqpfanout.New(infra.AMQP, amqpfanout.Config{QueueSize: cfg.SinkQueueSize}, logger))
	}

	sinks := make([]dispatcher.Sink, len(c.sinks))
	for i, s := range c.sinks {
		sinks[i] = s
	}

	c.registry = subscription.NewRegistry()
	c.tracker = presence.NewTracker(c.registry, logger)
	c.dispatcher = dispatcher.New(c.registry, c.tracker, logger,
		dispatcher.WithOutboxSize(cfg.OutboxSize),
		dispatcher.WithSinks(sinks...),
	)
	c.supervisor = offers.NewSupervisor(ctx, logger)
	c.section = commands.NewOrderSection(c.uowFactory, keylock.New[kernel.UUID](), c.supervisor, c.dispatcher, c.clock, logger)
	c.supervisor.Bind(c.CreateExpireOfferCommandHandler().OnExpiry)
	c.hub = hub.New(c.dispatcher, c.registry, c.tracker, c.uowFactory, c.clock, logger)

	return c
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.section)
}

func (c *CompositionRoot) CreateAdvanceStatusCommandHandler() commands.AdvanceStatusCommandHandler {
	return commands.NewAdvanceStatusCommandHandler(c.section, c.policy)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	return commands.NewClaimOrderCommandHandler(c.section, c.logger)
}

func (c *CompositionRoot) CreateExpireOfferCommandHandler() commands.ExpireOfferCommandHandler {
	return commands.NewExpireOfferCommandHandler(c.section, c.supervisor, c.policy, c.logger)
}

func (c *CompositionRoot) CreateReconcileOffersCommandHandler() commands.ReconcileOffersCommandHandler {
	return commands.NewReconcileOffersCommandHandler(c.uowFactory, c.supervisor, c.clock, c.CreateExpireOfferCommandHandler())
}

func (c *CompositionRoot) CreateSetRiderAvailabilityCommandHandler() commands.SetRiderAvailabilityCommandHandler {
	return commands.NewSetRiderAvailabilityCommandHandler(c.tracker, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.uowFactory, c.cache, c.logger)
}

func (c *CompositionRoot) CreateListActiveOrdersQueryHandler() queries.ListActiveOrdersQueryHandler {
	return queries.NewListActiveOrdersQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateListAvailableOrdersQueryHandler() queries.ListAvailableOrdersQueryHandler {
	return queries.NewListAvailableOrdersQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetOnlineRidersQueryHandler() queries.GetOnlineRidersQueryHandler {
	return queries.NewGetOnlineRidersQueryHandler(c.tracker)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateReconcileOffersCommandHandler(), c.cfg.OfferSweepSchedule, c.logger)
}

// CreateEcho builds the HTTP router, validating the embedded OpenAPI document on the way.
func (c *CompositionRoot) CreateEcho() (*echo.Echo, error) {
	doc, err := api.Load()
	if err != nil {
		return nil, err
	}
	docs, err := httpin.NewDocs(doc)
	if err != nil {
		return nil, err
	}

	server := httpin.NewServer(httpin.Handlers{
		PlaceOrder:           c.CreatePlaceOrderCommandHandler(),
		AdvanceStatus:        c.CreateAdvanceStatusCommandHandler(),
		ClaimOrder:           c.CreateClaimOrderCommandHandler(),
		SetRiderAvailability: c.CreateSetRiderAvailabilityCommandHandler(),
		GetOrder:             c.CreateGetOrderQueryHandler(),
		ListActiveOrders:     c.CreateListActiveOrdersQueryHandler(),
		ListAvailableOrders:  c.CreateListAvailableOrdersQueryHandler(),
		GetOnlineRiders:      c.CreateGetOnlineRidersQueryHandler(),
	}, c.hub, httpin.DefaultLiveConfig(), c.logger)

	return httpin.NewEcho(server, docs), nil
}

// Sinks are the event sinks to run alongside the server.
func (c *CompositionRoot) Sinks() []*eventsink.Async {
	return c.sinks
}

// Close stops the offer timers.
func (c *CompositionRoot) Close() {
	c.supervisor.Stop()
}
