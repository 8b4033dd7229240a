package queries

import (
	"context"

	"orderflow/internal/realtime/presence"
)

// RiderDirectory answers who is online right now.
type RiderDirectory interface {
	OnlineRiders() []presence.Rider
}

type GetOnlineRidersQueryHandler struct {
	riders RiderDirectory
}

func NewGetOnlineRidersQueryHandler(riders RiderDirectory) GetOnlineRidersQueryHandler {
	return GetOnlineRidersQueryHandler{riders: riders}
}

// Handle returns online riders, longest connected first.
func (h GetOnlineRidersQueryHandler) Handle(ctx context.Context, query GetOnlineRidersQuery) ([]presence.Rider, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.riders.OnlineRiders(), nil
}
