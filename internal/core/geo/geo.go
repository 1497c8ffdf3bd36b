package geo

import "math"

// EarthRadiusMeters is the mean radius of the spherical earth model used
// for all distance calculations.
const EarthRadiusMeters = 6_371_000.0

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid reports whether the point lies within the valid coordinate ranges.
func (p Point) IsValid() bool {
	return p.Lat >= -90.0 && p.Lat <= 90.0 && p.Lng >= -180.0 && p.Lng <= 180.0
}

// NewPoint returns a point for the given coordinates, or false when they are
// out of range.
func NewPoint(lat, lng float64) (Point, bool) {
	p := Point{Lat: lat, Lng: lng}
	if !p.IsValid() {
		return Point{}, false
	}
	return p, true
}

// DistanceMeters returns the great-circle distance between two points on a
// sphere. Returns false when either point is invalid.
func DistanceMeters(a, b Point) (float64, bool) {
	if !a.IsValid() || !b.IsValid() {
		return 0, false
	}
	latA := a.Lat * math.Pi / 180.0
	latB := b.Lat * math.Pi / 180.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h))), true
}

// Bbox is a geographic bounding box spanned by its south-west and north-east
// corners. A box with NorthEast.Lng < SouthWest.Lng wraps around the
// antimeridian.
type Bbox struct {
	SouthWest Point `json:"sw"`
	NorthEast Point `json:"ne"`
}

// NewBbox returns a box spanned by the given corners, or false when it is
// invalid.
func NewBbox(sw, ne Point) (Bbox, bool) {
	b := Bbox{SouthWest: sw, NorthEast: ne}
	if !b.IsValid() {
		return Bbox{}, false
	}
	return b, true
}

// IsValid reports whether both corners are valid coordinates and the
// south-west corner is not north of the north-east corner.
func (b Bbox) IsValid() bool {
	return b.SouthWest.IsValid() && b.NorthEast.IsValid() &&
		b.SouthWest.Lat <= b.NorthEast.Lat
}

// Wraps reports whether the box crosses the antimeridian.
func (b Bbox) Wraps() bool {
	return b.NorthEast.Lng < b.SouthWest.Lng
}

// Contains reports whether the point lies inside the box, honoring
// antimeridian wrapping.
func (b Bbox) Contains(p Point) bool {
	if p.Lat < b.SouthWest.Lat || p.Lat > b.NorthEast.Lat {
		return false
	}
	if b.Wraps() {
		return p.Lng >= b.SouthWest.Lng || p.Lng <= b.NorthEast.Lng
	}
	return p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// LngSpan returns the longitudinal extent of the box in degrees, accounting
// for wrapping.
func (b Bbox) LngSpan() float64 {
	if b.Wraps() {
		return 360.0 - (b.SouthWest.Lng - b.NorthEast.Lng)
	}
	return b.NorthEast.Lng - b.SouthWest.Lng
}

// Extend grows the box on every side by the given fraction of its extent,
// clamping latitudes to the poles and wrapping longitudes.
func (b Bbox) Extend(fraction float64) Bbox {
	dLat := (b.NorthEast.Lat - b.SouthWest.Lat) * fraction
	dLng := b.LngSpan() * fraction
	return Bbox{
		SouthWest: Point{
			Lat: math.Max(-90, b.SouthWest.Lat-dLat),
			Lng: wrapLng(b.SouthWest.Lng - dLng),
		},
		NorthEast: Point{
			Lat: math.Min(90, b.NorthEast.Lat+dLat),
			Lng: wrapLng(b.NorthEast.Lng + dLng),
		},
	}
}

func wrapLng(lng float64) float64 {
	for lng > 180.0 {
		lng -= 360.0
	}
	for lng < -180.0 {
		lng += 360.0
	}
	return lng
}
