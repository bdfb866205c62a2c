package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func macString(mac [6]byte) string {
	return net.HardwareAddr(mac[:]).String()
}

// ErrNoTimestamp is returned by Insert when a decoded record has no
// timestamp because it was dequeued before the connection's time-sync
// anchor was established (spec.md §9, Open Question 2 / DESIGN.md: such
// samples are dropped rather than stamped with a fallback, since every
// inserted row must carry a non-null timestamp per spec.md §3).
var ErrNoTimestamp = errors.New("storage: record has no timestamp, dropping")

// Insert dispatches a decoded record to the appropriate table insert by
// variant (spec.md §4.9 step 3).
func (s *Store) Insert(ctx context.Context, d ruuviproto.Decoded) error {
	if d.Timestamp == nil {
		return ErrNoTimestamp
	}
	recordedAt := time.UnixMilli(*d.Timestamp).UTC()

	switch d.Variant {
	case ruuviproto.VariantV2:
		return s.insertV2(ctx, d, recordedAt)
	case ruuviproto.VariantE1:
		return s.insertE1(ctx, d, recordedAt)
	default:
		return fmt.Errorf("storage: unknown variant 0x%02x", d.Variant)
	}
}

// insertV2 writes one decoded RAWv2 record. Per the V2 dual-table
// decision recorded in DESIGN.md, it inserts into both sensor_readings
// and tag_readings within a single transaction: either both rows land or
// neither does.
func (s *Store) insertV2(ctx context.Context, d ruuviproto.Decoded, recordedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	mac := macString(d.MAC)

	sensorSQL, sensorArgs, err := psql.Insert("sensor_readings").
		Columns(
			"recorded_at", "mac_address", "temperature", "relative_humidity",
			"pressure", "acceleration_x", "acceleration_y", "acceleration_z",
			"battery_voltage", "tx_power", "movement_counter",
			"measurement_sequence", "absolute_humidity", "dew_point_temperature",
		).
		Values(
			recordedAt, mac, d.TempC, d.HumidityPct,
			int32(d.PressurePa), int16(d.AccelX*1000), int16(d.AccelY*1000), int16(d.AccelZ*1000),
			d.BatteryMV/1000, int16(d.TxPowerDBm), int16(d.MovementCounter),
			int32(d.Seq), d.AbsHumidity, d.DewPointC,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("storage: build sensor_readings insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sensorSQL, sensorArgs...); err != nil {
		return fmt.Errorf("storage: insert sensor_readings: %w", err)
	}

	tagSQL, tagArgs, err := psql.Insert("tag_readings").
		Columns(
			"recorded_at", "mac_address", "temperature", "relative_humidity",
			"pressure", "acceleration_x", "acceleration_y", "acceleration_z",
			"battery_voltage", "tx_power", "movement_counter",
			"measurement_sequence", "absolute_humidity", "dew_point_temperature", "rssi",
		).
		Values(
			recordedAt, mac, d.TempC, d.HumidityPct,
			int32(d.PressurePa), int16(d.AccelX*1000), int16(d.AccelY*1000), int16(d.AccelZ*1000),
			d.BatteryMV/1000, int16(d.TxPowerDBm), int16(d.MovementCounter),
			int32(d.Seq), d.AbsHumidity, d.DewPointC, d.RSSI,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("storage: build tag_readings insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tagSQL, tagArgs...); err != nil {
		return fmt.Errorf("storage: insert tag_readings: %w", err)
	}

	return tx.Commit()
}

// insertE1 writes one decoded air-quality (format 0xE1) record.
func (s *Store) insertE1(ctx context.Context, d ruuviproto.Decoded, recordedAt time.Time) error {
	sql, args, err := psql.Insert("air_readings").
		Columns(
			"recorded_at", "mac_address", "temperature", "dew_point_temperature",
			"relative_humidity", "absolute_humidity", "pressure",
			"pm1_0", "pm2_5", "pm4_0", "pm10_0",
			"co2", "voc_index", "nox_index", "luminosity",
			"measurement_sequence", "flags", "tx_power", "rssi",
		).
		Values(
			recordedAt, macString(d.MAC), d.TempC, d.DewPointC,
			d.HumidityPct, d.AbsHumidity, int32(d.PressurePa),
			d.PM1_0, d.PM2_5, d.PM4_0, d.PM10_0,
			int32(d.CO2), int16(d.VOCIndex), int16(d.NOxIndex), d.Luminosity,
			int32(d.Seq), int16(d.Flags), int16(d.TxPowerDBm), d.RSSI,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("storage: build air_readings insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("storage: insert air_readings: %w", err)
	}
	return nil
}
