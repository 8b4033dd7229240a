package commands

import (
	"context"
	"errors"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
)

// ErrRiderOffline is returned when the rider has no live connection to pause or resume.
var ErrRiderOffline = errors.New("rider is not connected")

type RiderPresence interface {
	SetAvailable(courierID kernel.UUID, available bool) bool
}

type SetRiderAvailabilityCommandHandler struct {
	presence RiderPresence
	logger   *slog.Logger
}

func NewSetRiderAvailabilityCommandHandler(presence RiderPresence, logger *slog.Logger) SetRiderAvailabilityCommandHandler {
	return SetRiderAvailabilityCommandHandler{
		presence: presence,
		logger:   logger.With("component", "rider-availability"),
	}
}

func (h SetRiderAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetRiderAvailabilityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !h.presence.SetAvailable(cmd.CourierID(), cmd.Available()) {
		return ErrRiderOffline
	}

	h.logger.InfoContext(ctx, "rider availability changed",
		"courier_id", cmd.CourierID().String(), "available", cmd.Available(), "actor", cmd.Actor().String())
	return nil
}
