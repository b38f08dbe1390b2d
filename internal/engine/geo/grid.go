package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb/geo"
	"github.com/rotisserie/eris"

	"github.com/a-deal/gym-finder/internal/model"
)

// MetersPerMile converts miles to the meters orb/geo works in.
const MetersPerMile = 1609.344

// maxGridSide bounds the number of rows and columns of a grid.
const maxGridSide = 41

// CellRadius is the search radius of a grid cell with the given spacing.
// It circumscribes the cell's square, so neighbouring circles overlap.
func CellRadius(cellMiles float64) float64 {
	return cellMiles * math.Sqrt2 / 2
}

// GenerateRadiusGrid covers the circle around center with a square grid of
// cells spaced cellMiles apart. Each cell becomes a region searched with
// CellRadius(cellMiles). Cells whose square cannot touch the circle are
// dropped. Regions are returned row by row, north to south.
func GenerateRadiusGrid(center model.Coordinate, radiusMiles, cellMiles float64) ([]model.Region, error) {
	if radiusMiles <= 0 || cellMiles <= 0 {
		return nil, eris.Errorf("geo: radius and cell size must be positive, got %v and %v", radiusMiles, cellMiles)
	}
	n := int(math.Ceil(radiusMiles / cellMiles))
	if side := 2*n + 1; side > maxGridSide {
		return nil, eris.Errorf("geo: grid of %dx%d cells is too large, use a bigger cell", side, side)
	}

	origin := center.Point()
	cellRadius := CellRadius(cellMiles)
	reach := (radiusMiles + cellRadius) * MetersPerMile

	var regions []model.Region
	for r := -n; r <= n; r++ {
		// Bearing 180 moves south, so row 0 is the northernmost.
		rowStart := geo.PointAtBearingAndDistance(origin, 180, float64(r)*cellMiles*MetersPerMile)
		for c := -n; c <= n; c++ {
			p := geo.PointAtBearingAndDistance(rowStart, 90, float64(c)*cellMiles*MetersPerMile)
			if geo.DistanceHaversine(origin, p) > reach {
				continue
			}
			regions = append(regions, model.Region{
				ID:          fmt.Sprintf("grid-r%02d-c%02d", r+n, c+n),
				Center:      model.Coordinate{Lat: p.Lat(), Lng: p.Lon()},
				RadiusMiles: cellRadius,
			})
		}
	}
	return regions, nil
}

// DistanceMiles is the great-circle distance between two coordinates.
func DistanceMiles(a, b model.Coordinate) float64 {
	return geo.DistanceHaversine(a.Point(), b.Point()) / MetersPerMile
}
