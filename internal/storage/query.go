package storage

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Reading is a denormalized row returned by RecentReadings, covering
// fields common to all three tables (enough for the admin API's
// per-device view; it is not meant to be a full projection of any one
// schema).
type Reading struct {
	Table       string
	RecordedAt  time.Time
	Temperature float64
	Humidity    float64
	Pressure    int32
}

// RecentReadings returns the most recent readings for mac across
// sensor_readings and air_readings, newest first, bounded by limit.
// tag_readings is omitted deliberately: under the V2 dual-insert
// decision every tag_readings row has an identical sibling in
// sensor_readings, so including both would just duplicate each V2
// sample in the result.
func (s *Store) RecentReadings(ctx context.Context, mac string, limit int) ([]Reading, error) {
	sensor, err := s.recentFrom(ctx, "sensor_readings", mac, limit)
	if err != nil {
		return nil, err
	}
	air, err := s.recentFrom(ctx, "air_readings", mac, limit)
	if err != nil {
		return nil, err
	}

	merged := append(sensor, air...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].RecordedAt.After(merged[j].RecordedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (s *Store) recentFrom(ctx context.Context, table, mac string, limit int) ([]Reading, error) {
	q, args, err := psql.Select("recorded_at", "temperature", "relative_humidity", "pressure").
		From(table).
		Where("mac_address = ?", mac).
		OrderBy("recorded_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("storage: build %s query: %w", table, err)
	}

	type row struct {
		RecordedAt  time.Time `db:"recorded_at"`
		Temperature float64   `db:"temperature"`
		Humidity    float64   `db:"relative_humidity"`
		Pressure    int32     `db:"pressure"`
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("storage: query %s: %w", table, err)
	}

	out := make([]Reading, len(rows))
	for i, r := range rows {
		out[i] = Reading{
			Table:       table,
			RecordedAt:  r.RecordedAt,
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
			Pressure:    r.Pressure,
		}
	}
	return out, nil
}
