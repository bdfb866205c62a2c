package ruuviproto

import "math"

// Decoded holds physical-unit values, applied only on the gateway side
// (spec.md §2 data-flow: unit decode happens after deserialization, never
// on the listener).
type Decoded struct {
	Variant   Variant
	MAC       [6]byte
	Seq       uint32
	RSSI      int8
	Timestamp *int64 // Unix ms; nil if dequeued before the time-sync anchor existed

	TempC       float64
	HumidityPct float64
	PressurePa  float64
	AbsHumidity float64 // g/m3
	DewPointC   float64

	// V2-only
	AccelX, AccelY, AccelZ float64 // g (from raw mg-ish units, see Convert)
	BatteryMV              float64
	TxPowerDBm             float64
	MovementCounter        uint8

	// E1-only
	PM1_0, PM2_5, PM4_0, PM10_0 float64 // ug/m3
	CO2                         float64 // ppm
	VOCIndex, NOxIndex          float64
	Luminosity                  float64 // lux
	Flags                       uint8
}

// Convert applies the scales, offsets, bit-field splits and saturations of
// spec.md §3/§4.2 to a raw Record, and computes the derived dew point and
// absolute humidity.
func Convert(r Record) Decoded {
	d := Decoded{
		Variant: r.Variant,
		MAC:     r.MAC(),
		Seq:     r.Seq(),
	}

	switch r.Variant {
	case VariantV2:
		v2 := r.V2
		d.TempC = float64(v2.TempRaw) * 0.005
		d.HumidityPct = clampMax(float64(v2.HumidityRaw)*0.0025, 100)
		d.PressurePa = float64(v2.PressureRaw) + 50000

		d.AccelX = float64(v2.AccelX) / 1000
		d.AccelY = float64(v2.AccelY) / 1000
		d.AccelZ = float64(v2.AccelZ) / 1000

		battery := (v2.PowerInfo >> 5) & 0x7FF // top 11 bits
		txPower := v2.PowerInfo & 0x1F         // bottom 5 bits
		d.BatteryMV = float64(battery) + 1600
		d.TxPowerDBm = -40 + 2*float64(txPower)

		d.MovementCounter = v2.MovementCtr
		d.RSSI = v2.RSSI
		d.Timestamp = v2.Timestamp

	case VariantE1:
		e1 := r.E1
		d.TempC = float64(e1.TempRaw) * 0.005
		d.HumidityPct = clampMax(float64(e1.HumidityRaw)*0.0025, 100)
		d.PressurePa = float64(e1.PressureRaw) + 50000

		d.PM1_0 = clampMax(float64(e1.PM1_0)*0.1, 1000)
		d.PM2_5 = clampMax(float64(e1.PM2_5)*0.1, 1000)
		d.PM4_0 = clampMax(float64(e1.PM4_0)*0.1, 1000)
		d.PM10_0 = clampMax(float64(e1.PM10_0)*0.1, 1000)
		d.CO2 = clampMax(float64(e1.CO2), 40000)
		d.VOCIndex = clampMax(float64(e1.VOCIndex), 500)
		d.NOxIndex = clampMax(float64(e1.NOxIndex), 500)
		d.Luminosity = clampMax(float64(e1.Luminosity)*0.01, 144284)
		d.Flags = e1.Flags
		d.TxPowerDBm = float64(e1.TxPower)
		d.RSSI = e1.RSSI
		d.Timestamp = e1.Timestamp
	}

	d.AbsHumidity = absoluteHumidity(d.TempC, d.HumidityPct)
	d.DewPointC = dewPoint(d.TempC, d.HumidityPct)

	return d
}

func clampMax(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

// absoluteHumidity computes grams of water vapor per cubic meter of air
// (spec.md §3).
func absoluteHumidity(tempC, rhPct float64) float64 {
	psHPa := 6.1121 * math.Exp((18.678-tempC/234.5)*tempC/(257.14+tempC))
	paPa := 100 * psHPa * (rhPct / 100)
	return 2.167 * paPa / (tempC + 273.15)
}

// dewPoint computes the Magnus-form dew point in degrees Celsius
// (spec.md §3, a=17.625, b=243.04).
func dewPoint(tempC, rhPct float64) float64 {
	const a = 17.625
	const b = 243.04
	gamma := math.Log(rhPct/100) + a*tempC/(b+tempC)
	return b * gamma / (a - gamma)
}
