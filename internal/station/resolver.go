package station

import (
	"sort"

	"github.com/clearsight/clearsight/internal/geo"
)

// searchRadiiKm are the expanding search radii for nearest-valid-station
// selection. The 100 km step covers sparse coverage in the curated list.
var searchRadiiKm = []float64{10, 25, 50, 100}

// DefaultRankRadiusKm is the default cutoff for RankNearby.
const DefaultRankRadiusKm = 200

// NearestValid finds the closest station with usable data to the query
// point, searching radii of 10, 25, 50 and 100 km in turn. The winner is
// the closest station within the smallest radius that has at least one
// valid candidate; radius boundaries are inclusive. Returns false when no
// valid station lies within 100 km, in which case the caller should fall
// back to another data source.
func NearestValid(stations []Station, at geo.Coordinate) (Ranked, bool) {
	candidates := make([]Ranked, 0, len(stations))
	for _, s := range stations {
		if !s.Valid() {
			continue
		}
		candidates = append(candidates, Ranked{
			Station:    s,
			DistanceKm: geo.DistanceKm(at, s.Coordinate),
		})
	}

	for _, radius := range searchRadiiKm {
		var winner Ranked
		found := false
		for _, c := range candidates {
			if c.DistanceKm > radius {
				continue
			}
			if !found || c.DistanceKm < winner.DistanceKm {
				winner = c
				found = true
			}
		}
		if found {
			return winner, true
		}
	}

	return Ranked{}, false
}

// RankNearby returns stations within maxRadiusKm of the query point,
// sorted by ascending distance and truncated to maxResults. Unlike
// NearestValid it keeps stations without usable data, so callers can
// display them as unknown. A non-positive maxRadiusKm uses
// DefaultRankRadiusKm.
func RankNearby(stations []Station, at geo.Coordinate, maxResults int, maxRadiusKm float64) []Ranked {
	if maxRadiusKm <= 0 {
		maxRadiusKm = DefaultRankRadiusKm
	}

	ranked := make([]Ranked, 0, len(stations))
	for _, s := range stations {
		dist := geo.DistanceKm(at, s.Coordinate)
		if dist > maxRadiusKm {
			continue
		}
		ranked = append(ranked, Ranked{Station: s, DistanceKm: dist})
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	return ranked
}
