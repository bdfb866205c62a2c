// Package livefanout publishes inserted readings to NATS for live
// consumers (SPEC_FULL.md §C16). It must never sit on the critical
// insert path: publish is fire-and-forget, and with no NATS URL configured
// it is a no-op. A broker that cannot be reached at startup makes Connect
// return an error.
//
// Grounded on the teacher's `pkg/nats` client wrapper (connection
// options, handlers, `Publish`), trimmed to the one-way publish surface
// this spec needs and adapted from its subscribe-oriented API to a
// single insert-triggered `Publish`.
package livefanout

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/nats-io/nats.go"

	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
	"github.com/Lemminkyinen/ruuvi-listener/pkg/log"
)

// Publisher publishes inserted readings on subject
// "ruuvi.readings.<table>". A nil *Publisher is valid and Publish on it
// is a no-op, matching the "absent config, no-op" requirement.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials url and returns a Publisher. If url is empty, it returns
// (nil, nil): the caller gets a safe no-op Publisher rather than an
// error.
func Connect(url string) (*Publisher, error) {
	if url == "" {
		log.Info("livefanout: no NATS_URL configured, fan-out disabled")
		return nil, nil
	}

	nc, err := nats.Connect(url,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("livefanout: NATS disconnected: %s", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("livefanout: NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Warnf("livefanout: NATS error: %s", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("livefanout: connect to %s: %w", url, err)
	}

	log.Infof("livefanout: connected to %s", url)
	return &Publisher{conn: nc}, nil
}

// Close flushes and closes the connection, if any.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}

// reading is the compact wire shape published to NATS; it intentionally
// carries only the fields a live dashboard needs, not every storage
// column.
type reading struct {
	Table       string  `json:"table"`
	MAC         string  `json:"mac"`
	RecordedAt  int64   `json:"recorded_at_ms"`
	Temperature float64 `json:"temperature_c"`
	Humidity    float64 `json:"relative_humidity_pct"`
}

// Publish best-effort publishes d. With no connection or no timestamp it
// returns without doing anything; marshal and publish failures are logged
// and swallowed, never returned, since fan-out is explicitly not allowed
// to affect the insert path.
func (p *Publisher) Publish(d ruuviproto.Decoded) {
	if p == nil || p.conn == nil || d.Timestamp == nil {
		return
	}

	table, ok := tableFor(d.Variant)
	if !ok {
		return
	}

	data, err := json.Marshal(reading{
		Table:       table,
		MAC:         net.HardwareAddr(d.MAC[:]).String(),
		RecordedAt:  *d.Timestamp,
		Temperature: d.TempC,
		Humidity:    d.HumidityPct,
	})
	if err != nil {
		log.Warnf("livefanout: marshal reading: %s", err)
		return
	}

	subject := "ruuvi.readings." + table
	if err := p.conn.Publish(subject, data); err != nil {
		log.Warnf("livefanout: publish to %s: %s", subject, err)
	}
}

func tableFor(variant ruuviproto.Variant) (string, bool) {
	switch variant {
	case ruuviproto.VariantV2:
		return "sensor_readings", true
	case ruuviproto.VariantE1:
		return "air_readings", true
	default:
		return "", false
	}
}
