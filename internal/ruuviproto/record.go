// Package ruuviproto implements the RAWv2/E1 Ruuvi advertisement decoder
// (C1), the unit converter (C2), and the compact wire codec used between
// the listener and the gateway (spec.md §3, §4.1, §4.2, §6).
package ruuviproto

import "fmt"

// Format tags, the byte immediately following the Ruuvi manufacturer ID
// (0x99 0x04) in the advertisement payload.
const (
	FormatV2 byte = 0x05
	FormatE1 byte = 0xE1
)

const (
	manufacturerIDHi = 0x99
	manufacturerIDLo = 0x04

	v2PayloadLen = 24
	e1PayloadLen = 40
)

// RawV2 is the byte-exact field layout of a format-5 (RAWv2) advertisement,
// plus the RSSI and Timestamp fields the listener attaches after decoding
// (from the BLE report and from time-sync, respectively) before handing
// the record to the wire codec. These additions mirror the original Rust
// implementation's `RuuviRawV2`, which carries the same `rssi` and
// `timestamp` fields alongside the decoded payload; they are not part of
// the over-the-air advertisement itself.
type RawV2 struct {
	TempRaw     int16   // 0.005 degC/LSB
	HumidityRaw uint16  // 0.0025 %/LSB, saturates at 100%
	PressureRaw uint16  // Pa, offset -50000
	AccelX      int16
	AccelY      int16
	AccelZ      int16
	PowerInfo   uint16 // 11-bit battery mV (offset +1600) | 5-bit tx power
	MovementCtr uint8
	Seq         uint16
	MAC         [6]byte

	RSSI      int8
	Timestamp *int64 // Unix ms; nil until stamped by time-sync
}

// RawE1 is the byte-exact field layout of a format-0xE1 advertisement,
// plus the listener-attached RSSI, TX power (the E1 payload carries no
// power-info field of its own, unlike V2) and Timestamp fields, again
// mirroring the original `RuuviRawE1`.
type RawE1 struct {
	TempRaw     int16
	HumidityRaw uint16
	PressureRaw uint16
	PM1_0       uint16 // 0.1 ug/m3/LSB, saturates at 1000
	PM2_5       uint16
	PM4_0       uint16
	PM10_0      uint16
	CO2         uint16 // ppm, saturates at 40000
	VOCIndex    uint16 // 9-bit, saturates at 500
	NOxIndex    uint16 // 9-bit, saturates at 500
	Luminosity  uint32 // 24-bit, 0.01 lux/LSB, saturates at 144284
	Seq         uint32 // 24-bit
	Flags       uint8
	MAC         [6]byte

	RSSI      int8
	TxPower   int8
	Timestamp *int64
}

// Variant tags the wire union.
type Variant byte

const (
	VariantV2 Variant = Variant(FormatV2)
	VariantE1 Variant = Variant(FormatE1)
)

// Record is the tagged union decoded from a single advertisement. Exactly
// one of V2/E1 is non-nil, matching Variant.
type Record struct {
	Variant Variant
	V2      *RawV2
	E1      *RawE1
}

// MAC returns the 6-byte MAC address embedded in the payload, regardless of
// variant.
func (r Record) MAC() [6]byte {
	if r.V2 != nil {
		return r.V2.MAC
	}
	return r.E1.MAC
}

// Seq returns the measurement sequence number, widened to 32 bits.
func (r Record) Seq() uint32 {
	if r.V2 != nil {
		return uint32(r.V2.Seq)
	}
	return r.E1.Seq
}

// TooShortError is returned when the trailing payload is shorter than the
// format requires.
type TooShortError struct {
	Format byte
	Have   int
	Want   int
}

func (e *TooShortError) Error() string {
	return fmt.Sprintf("ruuviproto: format 0x%02x payload too short: have %d bytes, want %d", e.Format, e.Have, e.Want)
}

// UnknownFormatError is returned when the byte after the manufacturer ID is
// not a recognized format tag.
type UnknownFormatError struct {
	Format byte
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("ruuviproto: unknown format tag 0x%02x", e.Format)
}
