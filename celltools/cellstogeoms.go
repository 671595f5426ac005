package celltools

import (
	"fmt"
	"strings"

	"github.com/golang/geo/s2"
)

const EarthRadius = 6371000

func cellToWKT(cell s2.Cell) string {
	var b strings.Builder
	b.WriteString("POLYGON((")
	for k := 0; k < 4; k++ {
		latlng := s2.LatLngFromPoint(cell.Vertex(k))
		fmt.Fprintf(&b, "%v %v, ", latlng.Lng.Degrees(), latlng.Lat.Degrees())
	}
	closingPoint := s2.LatLngFromPoint(cell.Vertex(0))
	fmt.Fprintf(&b, "%v %v))", closingPoint.Lng.Degrees(), closingPoint.Lat.Degrees())
	return b.String()
}

// cellArea is the cell's area on a spherical Earth, in square metres.
func cellArea(cell s2.Cell) float64 {
	return cell.ExactArea() * EarthRadius * EarthRadius
}
