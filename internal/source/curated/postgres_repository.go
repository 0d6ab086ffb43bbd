package curated

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/station"
)

// PostgresSource serves the curated station dataset from PostgreSQL.
// It implements the same source port as FileSource, for deployments
// where the curated list is maintained in the database instead of a
// bundled file.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a PostgreSQL curated station source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Name returns the source name for logging.
func (s *PostgresSource) Name() string { return SourceName }

// FetchAll retrieves all curated stations.
func (s *PostgresSource) FetchAll(ctx context.Context) ([]station.Station, error) {
	query := `
		SELECT
			station_id, latitude, longitude,
			pm25, pm10, no2, so2, co, o3,
			aqi, last_update
		FROM curated_stations
		ORDER BY station_id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query curated stations: %w", err)
	}
	defer rows.Close()

	var stations []station.Station
	for rows.Next() {
		var st station.Station
		var pm25, pm10, no2, so2, co, o3 *float64
		var lastUpdate *time.Time

		err := rows.Scan(
			&st.ID,
			&st.Coordinate.Lat,
			&st.Coordinate.Lon,
			&pm25,
			&pm10,
			&no2,
			&so2,
			&co,
			&o3,
			&st.AuthoritativeAQI,
			&lastUpdate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan curated station: %w", err)
		}
		if lastUpdate != nil {
			st.LastUpdated = *lastUpdate
		}

		st.Pollutants = make(aqi.Readings)
		setIfPresent(st.Pollutants, aqi.PM25, pm25)
		setIfPresent(st.Pollutants, aqi.PM10, pm10)
		setIfPresent(st.Pollutants, aqi.NO2, no2)
		setIfPresent(st.Pollutants, aqi.SO2, so2)
		setIfPresent(st.Pollutants, aqi.CO, co)
		setIfPresent(st.Pollutants, aqi.O3, o3)

		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curated stations: %w", err)
	}

	return stations, nil
}

func setIfPresent(readings aqi.Readings, p aqi.Pollutant, value *float64) {
	if value != nil && *value > 0 {
		readings[p] = *value
	}
}
