package models

import "math"

const earthRadiusKM = 6371.0

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point is missing or sits on the null island.
// Both count as "no location".
func (g *GeoPoint) IsZero() bool {
	return g == nil || (g.Lat == 0 && g.Lng == 0)
}

func (g *GeoPoint) columns() (*float64, *float64) {
	if g == nil {
		return nil, nil
	}
	lat, lng := g.Lat, g.Lng
	return &lat, &lng
}

func pointFrom(lat, lng *float64) *GeoPoint {
	if lat == nil || lng == nil {
		return nil
	}
	return &GeoPoint{Lat: *lat, Lng: *lng}
}

// DistanceKM is the great-circle distance between a and b.
func DistanceKM(a, b GeoPoint) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}
