// Package worker provides background cache-warming jobs for ClearSight.
package worker

import (
	"time"
)

// WarmTarget represents a geographic area whose readings are kept warm.
type WarmTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are the lat/lon coordinates to resolve.
	// Typically dense residential or commuter areas.
	Points []Point

	// Priority determines refresh order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// WarmConfig holds configuration for the cache-warming job.
type WarmConfig struct {
	// Targets are the geographic areas to warm.
	// If empty, uses DefaultWarmTargets.
	Targets []WarmTarget

	// Concurrency is the number of concurrent resolutions.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each resolution.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultWarmConfig returns the default warming configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Targets:     DefaultWarmTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultWarmTargets returns the default warm targets for Delhi-NCR.
// Focuses on the areas the curated station set covers.
func DefaultWarmTargets() []WarmTarget {
	return []WarmTarget{
		{
			Name:     "Central Delhi",
			Priority: 1,
			Points: []Point{
				{Lat: 28.6366, Lon: 77.1990}, // Mandir Marg
				{Lat: 28.6289, Lon: 77.2065}, // Connaught Place
				{Lat: 28.6507, Lon: 77.2334}, // Civil Lines
			},
		},
		{
			Name:     "East Delhi",
			Priority: 1,
			Points: []Point{
				{Lat: 28.6468, Lon: 77.3152}, // Anand Vihar
				{Lat: 28.6226, Lon: 77.2878}, // Patparganj
			},
		},
		{
			Name:     "South Delhi",
			Priority: 1,
			Points: []Point{
				{Lat: 28.5672, Lon: 77.2100}, // Hauz Khas
				{Lat: 28.5505, Lon: 77.2719}, // Okhla
				{Lat: 28.5983, Lon: 77.1892}, // R.K. Puram
			},
		},
		{
			Name:     "West Delhi",
			Priority: 2,
			Points: []Point{
				{Lat: 28.6514, Lon: 77.1350}, // Punjabi Bagh
				{Lat: 28.6317, Lon: 77.0801}, // Janakpuri
			},
		},
		{
			Name:     "North Delhi",
			Priority: 2,
			Points: []Point{
				{Lat: 28.7041, Lon: 77.1025}, // Rohini
				{Lat: 28.6862, Lon: 77.2217}, // Model Town
			},
		},
		{
			Name:     "Noida",
			Priority: 2,
			Points: []Point{
				{Lat: 28.5747, Lon: 77.3560}, // Sector 62
				{Lat: 28.5355, Lon: 77.3910}, // Sector 125
			},
		},
		{
			Name:     "Gurugram",
			Priority: 2,
			Points: []Point{
				{Lat: 28.4595, Lon: 77.0266}, // Sector 51
			},
		},
		{
			Name:     "Ghaziabad",
			Priority: 3,
			Points: []Point{
				{Lat: 28.6692, Lon: 77.4538}, // Vasundhara
			},
		},
		{
			Name:     "Faridabad",
			Priority: 3,
			Points: []Point{
				{Lat: 28.4089, Lon: 77.3178}, // Sector 16A
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c WarmConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to warm.
func (c WarmConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
