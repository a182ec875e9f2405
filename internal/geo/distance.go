package geo

import "math"

// EarthRadiusKm — радиус Земли в километрах для формулы гаверсинусов.
const EarthRadiusKm = 6371.0088

// Point — географическая точка.
type Point struct {
	Lat float64
	Lon float64
}

// HaversineKm вычисляет длину дуги большого круга между двумя точками в километрах.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Interpolate возвращает точку на отрезке from-to в доле progress (0..1).
// Линейная интерполяция по координатам; для городских расстояний этого достаточно.
func Interpolate(from, to Point, progress float64) Point {
	if progress <= 0 {
		return from
	}
	if progress >= 1 {
		return to
	}
	return Point{
		Lat: from.Lat + (to.Lat-from.Lat)*progress,
		Lon: from.Lon + (to.Lon-from.Lon)*progress,
	}
}
