package model

import "time"

// Device represents one controller seen in a poll cycle.
type Device struct {
	DeviceID      string `gorm:"column:device_id;primaryKey"`
	Model         string `gorm:"column:model"`
	ModelGroup    string `gorm:"column:model_group"`
	Name          string `gorm:"column:name"`
	TankName      string `gorm:"column:tank_name"`
	Status        string `gorm:"column:status"`
	BatteryStatus string `gorm:"column:battery_status"`
	DeviceVersion string `gorm:"column:device_version"`
	LastUpdated   string `gorm:"column:last_updated"`

	MetricValues []MetricValue `gorm:"foreignKey:DeviceID;references:DeviceID"`
}

func (Device) TableName() string { return "devices" }

// MetricValue captures one flattened metric from a reading. Numeric metrics
// fill Value, textual ones TextValue.
type MetricValue struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	DeviceID  string    `gorm:"column:device_id;index"`
	Name      string    `gorm:"column:name"`
	Unit      string    `gorm:"column:unit"`
	Numeric   bool      `gorm:"column:is_numeric"`
	Value     float64   `gorm:"column:value"`
	TextValue string    `gorm:"column:text_value"`
	Timestamp time.Time `gorm:"column:timestamp;index;autoCreateTime"`

	Device Device `gorm:"foreignKey:DeviceID;references:DeviceID"`
}

func (MetricValue) TableName() string { return "metric_values" }
