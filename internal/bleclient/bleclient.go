// Package bleclient defines the contract the listener expects from the
// BLE radio stack. The radio stack itself is an external collaborator
// (spec.md §1: "Out of scope / external collaborators... The BLE radio
// stack (delivers advertisement reports with raw payload, RSSI, TX power,
// address kind)") — this package only expresses what the scanner task
// needs from it, matching the field shape the pack's BLE examples
// (`_examples/Palats-ruuvi/server.go`'s `StationTag`/`BluetoothAdvertisement`)
// already carry (RSSI, TxPower, raw payload) without adopting a concrete
// radio driver.
package bleclient

import "context"

// Report is one BLE advertisement observation, prior to Ruuvi decoding.
type Report struct {
	Payload []byte // raw advertisement data, manufacturer ID still embedded
	RSSI    int16
	TxPower int16
}

// Advertiser is satisfied by whatever BLE stack the platform provides.
// No radio-backed implementation ships in this repository: on a constrained
// device it is backed by the platform radio driver, the listener binary
// uses NoopAdvertiser, and in tests it is a fake that replays a fixed
// report sequence.
type Advertiser interface {
	// Scan delivers advertisement reports to out until ctx is done or the
	// underlying radio stops, whichever comes first.
	Scan(ctx context.Context, out chan<- Report) error
}
