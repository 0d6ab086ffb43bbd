// Package gateway orchestrates the air-quality data sources in priority
// order and produces normalized readings.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/config"
	"github.com/clearsight/clearsight/internal/geo"
	"github.com/clearsight/clearsight/internal/station"
)

// Gateway errors.
var (
	// ErrNoDataAvailable is returned when every configured source has
	// been tried and none produced a usable reading.
	ErrNoDataAvailable = errors.New("no air quality data available")

	// ErrSourceUnavailable marks upstream rejections (non-2xx) from an
	// individual source. The chain swallows it; it surfaces in logs and
	// source health only.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// StationSource supplies a pool of candidate stations.
type StationSource interface {
	FetchAll(ctx context.Context) ([]station.Station, error)
	Name() string
}

// MeasurementSource supplies raw measurements near a coordinate. A nil
// result with a nil error means the source had no coverage there.
type MeasurementSource interface {
	FetchNear(ctx context.Context, at geo.Coordinate) (*MeasurementSet, error)
	Name() string
}

// SourceMetrics records source fetch and cache outcomes. Satisfied by
// middleware.SourceMetrics.
type SourceMetrics interface {
	RecordRequest(source, operation string, duration time.Duration, err error)
	RecordCacheHit(source, operation string)
	RecordCacheMiss(source, operation string)
}

// MeasurementSet is a raw measurement bundle from a secondary source.
type MeasurementSet struct {
	Location   string
	Readings   aqi.Readings
	DistanceKm float64
	MeasuredAt time.Time
}

// Config holds configuration for the gateway service.
type Config struct {
	// Curated is the highest-priority station source.
	Curated StationSource

	// LiveFeed is queried when the curated source yields nothing and
	// the coordinate falls inside LiveFeedRegion. Optional.
	LiveFeed StationSource

	// Secondary is the last-resort measurement source. Optional.
	Secondary MeasurementSource

	// Cache is the read-through reading cache. Optional; nil disables
	// caching.
	Cache Cache

	// Converter computes sub-indices for the secondary-source path.
	// Defaults to the CPCB breakpoint converter.
	Converter *aqi.Converter

	// CacheTTL is how long a cached reading stays fresh
	// (default: config.DefaultCacheTTL).
	CacheTTL time.Duration

	// ServiceRegion flags readings outside it with a region warning
	// (default: config.ServiceRegion).
	ServiceRegion geo.Bounds

	// LiveFeedRegion gates whether the live feed is attempted
	// (default: config.LiveFeedRegion).
	LiveFeedRegion geo.Bounds

	// Metrics records fetch and cache outcomes. Optional.
	Metrics SourceMetrics

	// Logger for service operations.
	Logger zerolog.Logger

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// Service resolves AQI readings through the source priority chain:
// cache, curated dataset, live governmental feed, secondary API. A
// failing source is logged and skipped; only exhaustion of the whole
// chain is an error.
type Service struct {
	curated        StationSource
	liveFeed       StationSource
	secondary      MeasurementSource
	cache          Cache
	converter      *aqi.Converter
	cacheTTL       time.Duration
	serviceRegion  geo.Bounds
	liveFeedRegion geo.Bounds
	metrics        SourceMetrics
	logger         zerolog.Logger
	now            func() time.Time
}

// NewService creates a new gateway service.
func NewService(cfg Config) *Service {
	converter := cfg.Converter
	if converter == nil {
		converter = aqi.NewConverter(nil)
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = config.DefaultCacheTTL
	}

	serviceRegion := cfg.ServiceRegion
	if serviceRegion == (geo.Bounds{}) {
		serviceRegion = config.ServiceRegion
	}

	liveFeedRegion := cfg.LiveFeedRegion
	if liveFeedRegion == (geo.Bounds{}) {
		liveFeedRegion = config.LiveFeedRegion
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		curated:        cfg.Curated,
		liveFeed:       cfg.LiveFeed,
		secondary:      cfg.Secondary,
		cache:          cfg.Cache,
		converter:      converter,
		cacheTTL:       cacheTTL,
		serviceRegion:  serviceRegion,
		liveFeedRegion: liveFeedRegion,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		now:            now,
	}
}

// CacheKey returns the cache key for a coordinate, rounded to four
// decimal places (roughly 11 m of latitude).
func CacheKey(at geo.Coordinate) string {
	return fmt.Sprintf("aqi_%.4f_%.4f", at.Lat, at.Lon)
}

// Resolve produces a normalized reading for the coordinate, walking the
// source chain until one succeeds. Returns ErrNoDataAvailable when all
// sources are exhausted and geo.ErrInvalidCoordinate for out-of-range
// input.
func (s *Service) Resolve(ctx context.Context, at geo.Coordinate) (*aqi.Reading, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}

	key := CacheKey(at)

	if s.cache != nil {
		if reading, storedAt, ok := s.cache.Get(ctx, key); ok {
			if s.now().Sub(storedAt) < s.cacheTTL {
				s.logger.Debug().Str("key", key).Msg("serving cached reading")
				if s.metrics != nil {
					s.metrics.RecordCacheHit("gateway", "resolve")
				}
				return reading, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss("gateway", "resolve")
		}
	}

	reading := s.resolveFromSources(ctx, at)
	if reading == nil {
		return nil, ErrNoDataAvailable
	}

	reading.OutsideServiceRegion = !s.serviceRegion.Contains(at)

	if s.cache != nil {
		s.cache.Put(ctx, key, reading, s.now())
	}

	return reading, nil
}

// resolveFromSources walks the network sources in priority order.
func (s *Service) resolveFromSources(ctx context.Context, at geo.Coordinate) *aqi.Reading {
	if s.curated != nil {
		if reading := s.resolveFromStations(ctx, s.curated, at); reading != nil {
			return reading
		}
	}

	if s.liveFeed != nil && s.liveFeedRegion.Contains(at) {
		if reading := s.resolveFromStations(ctx, s.liveFeed, at); reading != nil {
			return reading
		}
	}

	if s.secondary != nil {
		if reading := s.resolveFromSecondary(ctx, at); reading != nil {
			return reading
		}
	}

	return nil
}

// resolveFromStations fetches a source's station pool and selects the
// nearest valid station. Any failure is logged and swallowed so the
// chain can continue.
func (s *Service) resolveFromStations(ctx context.Context, src StationSource, at geo.Coordinate) *aqi.Reading {
	start := s.now()
	stations, err := src.FetchAll(ctx)
	if s.metrics != nil {
		s.metrics.RecordRequest(src.Name(), "fetch_all", time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("source", src.Name()).Msg("station source failed")
		return nil
	}
	if len(stations) == 0 {
		return nil
	}

	winner, found := station.NearestValid(stations, at)
	if !found {
		s.logger.Debug().Str("source", src.Name()).Msg("no valid station within search radii")
		return nil
	}

	return s.stationReading(winner, src.Name())
}

// stationReading normalizes a selected station into a reading. The AQI
// value is the station's effective AQI (authoritative or the coarse
// max(pm25, pm10) proxy), not the full sub-index calculation; see
// station.EffectiveAQI.
func (s *Service) stationReading(winner station.Ranked, source string) *aqi.Reading {
	value := winner.EffectiveAQI()

	dominant := aqi.PM25
	if winner.Pollutants[aqi.PM10] > winner.Pollutants[aqi.PM25] {
		dominant = aqi.PM10
	}

	measuredAt := winner.LastUpdated
	if measuredAt.IsZero() {
		measuredAt = s.now()
	}

	return &aqi.Reading{
		AQI:               value,
		Category:          aqi.CategoryOf(value),
		DominantPollutant: dominant,
		Pollutants:        aqi.NormalizedPollutants(winner.Pollutants),
		StationLabel:      winner.ID,
		DistanceKm:        winner.DistanceKm,
		Source:            source,
		MeasuredAt:        measuredAt,
	}
}

// resolveFromSecondary queries the secondary API and normalizes its raw
// measurements with the full sub-index calculation. This intentionally
// differs from the station paths' coarse proxy; both behaviors are
// inherited from the upstream sources.
func (s *Service) resolveFromSecondary(ctx context.Context, at geo.Coordinate) *aqi.Reading {
	start := s.now()
	set, err := s.secondary.FetchNear(ctx, at)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.secondary.Name(), "fetch_near", time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("source", s.secondary.Name()).Msg("secondary source failed")
		return nil
	}
	if set == nil {
		return nil
	}

	value, dominant := s.converter.OverallAQI(set.Readings)
	if value == 0 {
		return nil
	}

	measuredAt := set.MeasuredAt
	if measuredAt.IsZero() {
		measuredAt = s.now()
	}

	return &aqi.Reading{
		AQI:               value,
		Category:          aqi.CategoryOf(value),
		DominantPollutant: dominant,
		Pollutants:        aqi.NormalizedPollutants(set.Readings),
		StationLabel:      set.Location,
		DistanceKm:        set.DistanceKm,
		Source:            s.secondary.Name(),
		MeasuredAt:        measuredAt,
	}
}

// NearbyStations lists stations around the coordinate for map display,
// ranked by distance. Stations without usable data are included. Source
// failures degrade to an empty list.
func (s *Service) NearbyStations(ctx context.Context, at geo.Coordinate, limit int) ([]station.Ranked, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}

	var stations []station.Station
	if s.curated != nil {
		var err error
		stations, err = s.curated.FetchAll(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("source", s.curated.Name()).Msg("curated source failed, trying live feed")
			stations = nil
		}
	}

	if len(stations) == 0 && s.liveFeed != nil {
		var err error
		stations, err = s.liveFeed.FetchAll(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("source", s.liveFeed.Name()).Msg("live feed failed")
			return []station.Ranked{}, nil
		}
	}

	return station.RankNearby(stations, at, limit, station.DefaultRankRadiusKm), nil
}
