package ruuviproto

import (
	"encoding/binary"
	"fmt"
)

// Marshal encodes a Record into the compact binary form exchanged as the
// post-decrypt payload (spec.md §6): the format-tag byte, the raw
// advertisement fields in the same order/width/endianness as §3, and
// finally the listener-attached RSSI/TxPower/Timestamp fields the
// original implementation carries alongside the decoded payload (see
// record.go). No variable-length integers are used, so both endpoints
// must agree on the exact layout, which this function and Unmarshal
// share.
func Marshal(r Record) ([]byte, error) {
	switch r.Variant {
	case VariantV2:
		return marshalV2(r.V2), nil
	case VariantE1:
		return marshalE1(r.E1), nil
	default:
		return nil, fmt.Errorf("ruuviproto: marshal: unknown variant 0x%02x", r.Variant)
	}
}

// timestampLen is 1 presence byte + 8 bytes of big-endian Unix ms.
const timestampLen = 1 + 8

func appendTimestamp(b []byte, ts *int64) []byte {
	if ts == nil {
		return append(b, 0)
	}
	var tsb [8]byte
	binary.BigEndian.PutUint64(tsb[:], uint64(*ts))
	b = append(b, 1)
	return append(b, tsb[:]...)
}

func readTimestamp(b []byte) (*int64, error) {
	if len(b) < timestampLen {
		return nil, fmt.Errorf("ruuviproto: unmarshal: truncated timestamp field")
	}
	if b[0] == 0 {
		return nil, nil
	}
	ms := int64(binary.BigEndian.Uint64(b[1:timestampLen]))
	return &ms, nil
}

func marshalV2(v *RawV2) []byte {
	b := make([]byte, v2PayloadLen, v2PayloadLen+1+timestampLen)
	b[0] = FormatV2
	binary.BigEndian.PutUint16(b[1:3], uint16(v.TempRaw))
	binary.BigEndian.PutUint16(b[3:5], v.HumidityRaw)
	binary.BigEndian.PutUint16(b[5:7], v.PressureRaw)
	binary.BigEndian.PutUint16(b[7:9], uint16(v.AccelX))
	binary.BigEndian.PutUint16(b[9:11], uint16(v.AccelY))
	binary.BigEndian.PutUint16(b[11:13], uint16(v.AccelZ))
	binary.BigEndian.PutUint16(b[13:15], v.PowerInfo)
	b[15] = v.MovementCtr
	binary.BigEndian.PutUint16(b[16:18], v.Seq)
	copy(b[18:24], v.MAC[:])

	b = append(b, byte(v.RSSI))
	b = appendTimestamp(b, v.Timestamp)
	return b
}

func marshalE1(e *RawE1) []byte {
	b := make([]byte, e1PayloadLen, e1PayloadLen+2+timestampLen)
	b[0] = FormatE1
	binary.BigEndian.PutUint16(b[1:3], uint16(e.TempRaw))
	binary.BigEndian.PutUint16(b[3:5], e.HumidityRaw)
	binary.BigEndian.PutUint16(b[5:7], e.PressureRaw)
	binary.BigEndian.PutUint16(b[7:9], e.PM1_0)
	binary.BigEndian.PutUint16(b[9:11], e.PM2_5)
	binary.BigEndian.PutUint16(b[11:13], e.PM4_0)
	binary.BigEndian.PutUint16(b[13:15], e.PM10_0)
	binary.BigEndian.PutUint16(b[15:17], e.CO2)
	b[17] = byte(e.VOCIndex >> 1)
	b[18] = byte(e.NOxIndex >> 1)
	b[19] = byte(e.Luminosity >> 16)
	b[20] = byte(e.Luminosity >> 8)
	b[21] = byte(e.Luminosity)
	b[22] = byte(e.Seq >> 16)
	b[23] = byte(e.Seq >> 8)
	b[24] = byte(e.Seq)
	b[28] = e.Flags | byte((e.VOCIndex&1)<<7) | byte((e.NOxIndex&1)<<6)
	copy(b[34:40], e.MAC[:])

	b = append(b, byte(e.RSSI), byte(e.TxPower))
	b = appendTimestamp(b, e.Timestamp)
	return b
}

// Unmarshal decodes a wire-format Record previously produced by Marshal.
// The leading advertisement-shaped portion is parsed by Decode (also used
// for the live BLE path, where it is byte-identical to the advertisement
// payload); Unmarshal additionally parses the trailing RSSI/TxPower/
// Timestamp fields that Decode leaves at their zero values.
func Unmarshal(b []byte) (Record, error) {
	r, err := Decode(b)
	if err != nil {
		return Record{}, err
	}

	switch r.Variant {
	case VariantV2:
		tail := b[1+v2PayloadLen-1:]
		if len(tail) < 1 {
			return Record{}, fmt.Errorf("ruuviproto: unmarshal: truncated V2 tail")
		}
		r.V2.RSSI = int8(tail[0])
		ts, err := readTimestamp(tail[1:])
		if err != nil {
			return Record{}, err
		}
		r.V2.Timestamp = ts
	case VariantE1:
		tail := b[1+e1PayloadLen-1:]
		if len(tail) < 2 {
			return Record{}, fmt.Errorf("ruuviproto: unmarshal: truncated E1 tail")
		}
		r.E1.RSSI = int8(tail[0])
		r.E1.TxPower = int8(tail[1])
		ts, err := readTimestamp(tail[2:])
		if err != nil {
			return Record{}, err
		}
		r.E1.Timestamp = ts
	}

	return r, nil
}
