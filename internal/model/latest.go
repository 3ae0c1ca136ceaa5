package model

import "time"

// LatestMetricValue stores a periodic snapshot of the latest value of each
// metric per device. Table: latest_metric_values
// It mirrors the output from internal/db.MetricLatest with an auto-increment ID.
type LatestMetricValue struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	DeviceID  string    `gorm:"column:device_id;index"`
	Name      string    `gorm:"column:name;index"`
	Unit      string    `gorm:"column:unit"`
	Numeric   bool      `gorm:"column:is_numeric"`
	Value     float64   `gorm:"column:value"`
	TextValue string    `gorm:"column:text_value"`
	Timestamp time.Time `gorm:"column:timestamp;index"`
}

func (LatestMetricValue) TableName() string { return "latest_metric_values" }
