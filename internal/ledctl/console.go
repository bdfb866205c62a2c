package ledctl

import "github.com/Lemminkyinen/ruuvi-listener/pkg/log"

// ConsoleDriver is a Driver that logs color changes instead of talking to
// real LED hardware. It is what every platform falls back to until a
// concrete RGB driver is wired in, matching the no-op stand-in
// (bleclient.NoopAdvertiser) used for the BLE radio.
type ConsoleDriver struct{}

func (ConsoleDriver) Paint(e Event) {
	switch e {
	case BleNew:
		log.Debug("led: green (BLE new)")
	case BleDuplicate:
		log.Debug("led: blue (BLE duplicate)")
	case TcpOk:
		log.Debug("led: white (TCP ok)")
	}
}

func (ConsoleDriver) Off() {
	log.Debug("led: off")
}
