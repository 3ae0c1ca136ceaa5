package model

import "time"

// MetricSnapshot represents a single metric's current value.
// Only one of Value or TextValue is meaningful depending on Numeric.
type MetricSnapshot struct {
	Name      string    `json:"name"`
	Unit      string    `json:"unit,omitempty"`
	Numeric   bool      `json:"numeric"`
	Value     *float64  `json:"value,omitempty"`
	TextValue string    `json:"text_value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DeviceSnapshot aggregates all metrics for a device.
type DeviceSnapshot struct {
	DeviceID      string           `json:"device_id"`
	Name          string           `json:"name"`
	ModelGroup    string           `json:"model_group"`
	Status        string           `json:"status,omitempty"`
	BatteryStatus string           `json:"battery_status,omitempty"`
	TankName      string           `json:"tank_name,omitempty"`
	Metrics       []MetricSnapshot `json:"metrics"`
}

// PollSnapshot aggregates all devices of one poll cycle.
type PollSnapshot struct {
	Devices   []DeviceSnapshot `json:"devices"`
	Timestamp time.Time        `json:"timestamp"`
}
