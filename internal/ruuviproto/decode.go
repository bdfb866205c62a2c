package ruuviproto

import (
	"encoding/binary"
	"fmt"
)

// ErrManufacturerIDNotFound is returned when the Ruuvi manufacturer ID
// cannot be located anywhere in the advertisement data.
var ErrManufacturerIDNotFound = fmt.Errorf("ruuviproto: manufacturer ID 0x99 0x04 not found in advertisement")

// LocateManufacturerData scans a BLE advertisement report for the Ruuvi
// manufacturer ID (bytes 0x99 0x04, i.e. company ID 0x0499 little-endian)
// and returns the data starting at the format tag byte that follows it.
// Format 5 (RAWv2) and format 0xE1 advertisements place the manufacturer ID
// at different fixed offsets within the AD structure (offset 5 and offset 2
// respectively, per spec.md §4.1); scanning for the two-byte sequence
// directly — rather than hardcoding either offset — handles both without
// the caller needing to know which variant it is looking at.
func LocateManufacturerData(adv []byte) ([]byte, error) {
	for i := 0; i+1 < len(adv); i++ {
		if adv[i] == 0x99 && adv[i+1] == 0x04 {
			return adv[i+2:], nil
		}
	}
	return nil, ErrManufacturerIDNotFound
}

// Decode parses the manufacturer-specific payload (starting at the format
// tag byte, as returned by LocateManufacturerData) into a Record.
func Decode(payload []byte) (Record, error) {
	if len(payload) < 1 {
		return Record{}, &TooShortError{Have: len(payload), Want: 1}
	}

	format := payload[0]
	body := payload[1:]

	switch format {
	case FormatV2:
		return decodeV2(body)
	case FormatE1:
		return decodeE1(body)
	default:
		return Record{}, &UnknownFormatError{Format: format}
	}
}

func decodeV2(b []byte) (Record, error) {
	const want = v2PayloadLen - 1 // trailing bytes after the format tag
	if len(b) < want {
		return Record{}, &TooShortError{Format: FormatV2, Have: len(b), Want: want}
	}

	raw := &RawV2{
		TempRaw:     int16(binary.BigEndian.Uint16(b[0:2])),
		HumidityRaw: binary.BigEndian.Uint16(b[2:4]),
		PressureRaw: binary.BigEndian.Uint16(b[4:6]),
		AccelX:      int16(binary.BigEndian.Uint16(b[6:8])),
		AccelY:      int16(binary.BigEndian.Uint16(b[8:10])),
		AccelZ:      int16(binary.BigEndian.Uint16(b[10:12])),
		PowerInfo:   binary.BigEndian.Uint16(b[12:14]),
		MovementCtr: b[14],
		Seq:         binary.BigEndian.Uint16(b[15:17]),
	}
	copy(raw.MAC[:], b[17:23])

	return Record{Variant: VariantV2, V2: raw}, nil
}

func decodeE1(b []byte) (Record, error) {
	const want = e1PayloadLen - 1
	if len(b) < want {
		return Record{}, &TooShortError{Format: FormatE1, Have: len(b), Want: want}
	}

	raw := &RawE1{
		TempRaw:     int16(binary.BigEndian.Uint16(b[0:2])),
		HumidityRaw: binary.BigEndian.Uint16(b[2:4]),
		PressureRaw: binary.BigEndian.Uint16(b[4:6]),
		PM1_0:       binary.BigEndian.Uint16(b[6:8]),
		PM2_5:       binary.BigEndian.Uint16(b[8:10]),
		PM4_0:       binary.BigEndian.Uint16(b[10:12]),
		PM10_0:      binary.BigEndian.Uint16(b[12:14]),
		CO2:         binary.BigEndian.Uint16(b[14:16]),
	}

	// VOC/NOx: 9 bits each, assembled as (byte<<1) | flags_bit. The high
	// byte lives at offsets 16/17, the low bit comes from the flags byte.
	flags := b[27]
	raw.VOCIndex = (uint16(b[16]) << 1) | uint16((flags>>7)&1)
	raw.NOxIndex = (uint16(b[17]) << 1) | uint16((flags>>6)&1)
	raw.Flags = flags

	// 24-bit big-endian luminosity at offsets 18-20.
	raw.Luminosity = uint32(b[18])<<16 | uint32(b[19])<<8 | uint32(b[20])

	// 24-bit big-endian measurement sequence at offsets 21-23.
	raw.Seq = uint32(b[21])<<16 | uint32(b[22])<<8 | uint32(b[23])

	copy(raw.MAC[:], b[33:39])

	return Record{Variant: VariantE1, E1: raw}, nil
}
