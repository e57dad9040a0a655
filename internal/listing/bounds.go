package listing

import "fmt"

// Bounds is the visible rectangle of the map view.
type Bounds struct {
	MinLat float64 `form:"minLat" binding:"gte=-90,lte=90"`
	MaxLat float64 `form:"maxLat" binding:"gte=-90,lte=90"`
	MinLng float64 `form:"minLng" binding:"gte=-180,lte=180"`
	MaxLng float64 `form:"maxLng" binding:"gte=-180,lte=180"`
}

// Validate rejects inverted latitude ranges. A longitude range with MinLng > MaxLng
// crosses the antimeridian and is allowed.
func (b Bounds) Validate() error {
	if b.MinLat > b.MaxLat {
		return fmt.Errorf("%w: minLat exceeds maxLat", ErrInvalidQuery)
	}
	return nil
}

// CrossesAntimeridian reports whether the box wraps around longitude 180.
func (b Bounds) CrossesAntimeridian() bool {
	return b.MinLng > b.MaxLng
}

// Contains reports whether the point lies inside the box.
func (b Bounds) Contains(lat, lng float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.CrossesAntimeridian() {
		return lng >= b.MinLng || lng <= b.MaxLng
	}
	return lng >= b.MinLng && lng <= b.MaxLng
}
