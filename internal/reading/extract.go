// Package reading flattens the structured `messages` payload of a device
// reading into named metric records that the sinks (file storage, SQLite,
// InfluxDB) can write without knowing the wire schema.
package reading

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"hanna-collector/internal/hanna"
)

// Metric is one flattened value from a reading. Numeric metrics carry Value;
// textual ones (pump colors, calibration dates, connection state) carry Text.
type Metric struct {
	DeviceID  string
	Name      string
	Unit      string
	Numeric   bool
	Value     float64
	Text      string
	Timestamp time.Time
}

// Measured parameter names and their units, as reported by BL12x/BL13x
// controllers.
var parameterUnits = map[string]string{
	"ph":       "pH",
	"temp":     "°C",
	"orp":      "mV",
	"cl":       "ppm",
	"acidBase": "L",
}

// Dosing pump state keys inside the status map.
var pumpKeys = []string{"phPumpColor", "clPumpColor", "StatusColor"}

// Last dosed volume keys, in liters.
var doseKeys = []string{"acidBase", "cl"}

// GLP calibration keys. DateTime-suffixed keys are textual, the rest numeric
// (slope in %, offset in mV).
var glpKeys = []string{"pHDateTime", "orpDateTime", "pHSlope", "pHOffset"}

// Flatten extracts all known metrics from one reading. Unknown parameter
// names pass through with an empty unit so new firmware fields still get
// recorded.
func Flatten(r hanna.Reading, at time.Time) []Metric {
	var out []Metric

	for _, p := range r.Messages.Parameters {
		m := Metric{DeviceID: r.DeviceID, Name: p.Name, Unit: parameterUnits[p.Name], Timestamp: at}
		if v, ok := asFloat(p.Value); ok {
			m.Numeric = true
			m.Value = v
		} else if s, ok := asString(p.Value); ok {
			m.Text = s
		} else {
			continue
		}
		out = append(out, m)
	}

	for _, key := range pumpKeys {
		if s, ok := asString(r.Messages.Status[key]); ok {
			out = append(out, Metric{DeviceID: r.DeviceID, Name: key, Text: s, Timestamp: at})
		}
	}

	for _, key := range doseKeys {
		if v, ok := asFloat(r.Messages.LastDosedVolumes[key]); ok {
			out = append(out, Metric{
				DeviceID:  r.DeviceID,
				Name:      "lastDosed_" + key,
				Unit:      "L",
				Numeric:   true,
				Value:     v,
				Timestamp: at,
			})
		}
	}

	for _, key := range glpKeys {
		v, present := r.Messages.GLP[key]
		if !present || v == nil {
			continue
		}
		m := Metric{DeviceID: r.DeviceID, Name: "glp_" + key, Timestamp: at}
		if strings.Contains(key, "DateTime") {
			s, ok := asString(v)
			if !ok {
				continue
			}
			m.Text = s
		} else if f, ok := asFloat(v); ok {
			m.Numeric = true
			m.Value = f
			if key == "pHSlope" {
				m.Unit = "%"
			} else {
				m.Unit = "mV"
			}
		} else if s, ok := asString(v); ok {
			m.Text = s
		} else {
			continue
		}
		out = append(out, m)
	}

	// Active condition lists surface as counts; the sinks only need to know
	// how many are firing, not their payloads.
	for _, c := range []struct {
		name string
		list []any
	}{
		{"alarmCount", r.Messages.Alarms},
		{"warningCount", r.Messages.Warnings},
		{"errorCount", r.Messages.Errors},
	} {
		if len(c.list) > 0 {
			out = append(out, Metric{
				DeviceID:  r.DeviceID,
				Name:      c.name,
				Numeric:   true,
				Value:     float64(len(c.list)),
				Timestamp: at,
			})
		}
	}

	if r.Messages.ConnectionState != "" {
		out = append(out, Metric{
			DeviceID:  r.DeviceID,
			Name:      "connectionState",
			Text:      r.Messages.ConnectionState,
			Timestamp: at,
		})
	}

	return out
}

// Parameter returns one named measurement (ph, temp, orp, cl, acidBase) from
// a reading, if present and numeric.
func Parameter(r hanna.Reading, name string) (float64, bool) {
	for _, p := range r.Messages.Parameters {
		if p.Name == name {
			return asFloat(p.Value)
		}
	}
	return 0, false
}

// asFloat converts the value shapes the API is known to emit for numbers:
// JSON numbers, numeric strings, and json.Number.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	default:
		return "", false
	}
}
