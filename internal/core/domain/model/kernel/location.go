package kernel

import (
	"fmt"
	"math"

	"orderflow/internal/pkg/errs"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// Location is a WGS84 drop-off point. It is carried on the order so the rider
// feed can show where an offered order is going; routing itself lives elsewhere.
type Location struct {
	lat float64
	lng float64

	isSet bool
}

// NewLocation validates coordinate ranges.
//
// Example:
//
//	loc, err := kernel.NewLocation(52.5200, 13.4050)
//	if err != nil {
//	    return err
//	}
func NewLocation(lat, lng float64) (Location, error) {
	if math.IsNaN(lat) || lat < minLatitude || lat > maxLatitude {
		return Location{}, errs.NewValueIsOutOfRangeError("latitude", lat, minLatitude, maxLatitude)
	}
	if math.IsNaN(lng) || lng < minLongitude || lng > maxLongitude {
		return Location{}, errs.NewValueIsOutOfRangeError("longitude", lng, minLongitude, maxLongitude)
	}
	return Location{lat: lat, lng: lng, isSet: true}, nil
}

func (l Location) Lat() float64 {
	return l.lat
}

func (l Location) Lng() float64 {
	return l.lng
}

func (l Location) Validate() error {
	if !l.isSet {
		return errs.NewValueIsRequiredError("location")
	}
	return nil
}

func (l Location) IsEqual(other Location) bool {
	return l == other
}

func (l Location) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", l.lat, l.lng)
}
