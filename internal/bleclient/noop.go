package bleclient

import "context"

// NoopAdvertiser is an Advertiser that never reports anything; it just
// blocks until ctx is canceled. It exists so the listener binary links
// and runs on a development machine with no radio attached — a real
// deployment wires in the platform's BLE stack in its place.
type NoopAdvertiser struct{}

func (NoopAdvertiser) Scan(ctx context.Context, out chan<- Report) error {
	<-ctx.Done()
	return ctx.Err()
}
