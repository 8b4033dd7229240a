// Package orderrepo maps the order aggregate to the orders table.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is one row of the orders table. Version carries the optimistic
// concurrency token.
type OrderDTO struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey"`
	RestaurantID   uuid.UUID   `gorm:"type:uuid;index;not null"`
	CustomerID     uuid.UUID   `gorm:"type:uuid;index;not null"`
	CourierID      *uuid.UUID  `gorm:"type:uuid;index"`
	Location       LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	Amount         int64       `gorm:"not null"`
	Status         string      `gorm:"type:varchar(16);index;not null"`
	CreatedAt      time.Time   `gorm:"autoCreateTime:false;not null"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime:false;not null"`
	OfferExpiresAt *time.Time
	OfferAttempts  int `gorm:"not null"`
	Version        int `gorm:"not null"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO is the delivery point embedded in the orders table.
type LocationDTO struct {
	Lat float64 `gorm:"type:double precision"`
	Lng float64 `gorm:"type:double precision"`
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	var courierID *uuid.UUID
	if s.CourierID != nil {
		raw := s.CourierID.Bytes()
		courierID = &raw
	}

	return OrderDTO{
		ID:           s.ID.Bytes(),
		RestaurantID: s.RestaurantID.Bytes(),
		CustomerID:   s.CustomerID.Bytes(),
		CourierID:    courierID,
		Location: LocationDTO{
			Lat: s.Location.Lat(),
			Lng: s.Location.Lng(),
		},
		Amount:         s.Amount,
		Status:         s.Status.String(),
		CreatedAt:      s.CreatedAt.UTC(),
		UpdatedAt:      s.UpdatedAt.UTC(),
		OfferExpiresAt: s.OfferExpiresAt,
		OfferAttempts:  s.OfferAttempts,
		Version:        s.Version,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	location, err := kernel.NewLocation(dto.Location.Lat, dto.Location.Lng)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var offerExpiresAt *time.Time
	if dto.OfferExpiresAt != nil {
		at := dto.OfferExpiresAt.UTC()
		offerExpiresAt = &at
	}

	return order.RestoreOrder(order.Snapshot{
		ID:             id,
		RestaurantID:   restaurantID,
		CustomerID:     customerID,
		CourierID:      courierID,
		Location:       location,
		Amount:         dto.Amount,
		Status:         status,
		CreatedAt:      dto.CreatedAt.UTC(),
		UpdatedAt:      dto.UpdatedAt.UTC(),
		OfferExpiresAt: offerExpiresAt,
		OfferAttempts:  dto.OfferAttempts,
		Version:        dto.Version,
	})
}
