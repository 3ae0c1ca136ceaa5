package db

import (
	"context"
	"encoding/json"
	"time"

	"hanna-collector/internal/model"

	"gorm.io/gorm"
)

// DB wraps the sqlite connection holding recorded poll history.
type DB struct {
	ORM *gorm.DB
}

// Open opens the SQLite database using GORM and runs migrations.
func Open(path string) (*DB, error) {
	g, err := openORM(path)
	if err != nil {
		return nil, err
	}
	if err := migrateORM(g); err != nil {
		_ = closeORM(g)
		return nil, err
	}
	return &DB{ORM: g}, nil
}

func (d *DB) Close() error { return closeORM(d.ORM) }

// DeviceInfo mirrors a subset of the devices table for stats output
type DeviceInfo struct {
	DeviceID      string `json:"device_id"`
	Name          string `json:"name"`
	ModelGroup    string `json:"model_group"`
	Status        string `json:"status"`
	BatteryStatus string `json:"battery_status"`
	TankName      string `json:"tank_name"`
	DeviceVersion string `json:"device_version"`
	LastUpdated   string `json:"last_updated"`
}

// DeviceMetric mirrors a row from metric_values for history style output
type DeviceMetric struct {
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Numeric   bool      `json:"numeric"`
	Value     float64   `json:"value"`
	TextValue string    `json:"text_value"`
	Timestamp time.Time `json:"timestamp"`
}

// MetricLatest represents the latest record for each unique metric name per device.
type MetricLatest struct {
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Numeric   bool      `json:"numeric"`
	Value     float64   `json:"value"`
	TextValue string    `json:"text_value"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats aggregates device lists and metric history for a given deviceID
type Stats struct {
	DeviceCount        int            `json:"device_count"`
	Devices            []DeviceInfo   `json:"devices"`
	DeviceMetricsCount int            `json:"device_metrics_count"`
	DeviceMetrics      []DeviceMetric `json:"device_metrics"`
}

func fromModelDeviceInfo(d model.Device) DeviceInfo {
	return DeviceInfo{
		DeviceID:      d.DeviceID,
		Name:          d.Name,
		ModelGroup:    d.ModelGroup,
		Status:        d.Status,
		BatteryStatus: d.BatteryStatus,
		TankName:      d.TankName,
		DeviceVersion: d.DeviceVersion,
		LastUpdated:   d.LastUpdated,
	}
}

func fromModelMetric(r model.MetricValue) DeviceMetric {
	return DeviceMetric{
		DeviceID:  r.DeviceID,
		Name:      r.Name,
		Unit:      r.Unit,
		Numeric:   r.Numeric,
		Value:     r.Value,
		TextValue: r.TextValue,
		Timestamp: r.Timestamp,
	}
}

// ListDevices returns all devices ever seen in a poll.
func (d *DB) ListDevices(ctx context.Context) ([]DeviceInfo, error) {
	var devs []model.Device
	if err := d.ORM.WithContext(ctx).Order("device_id").Find(&devs).Error; err != nil {
		return nil, err
	}
	out := make([]DeviceInfo, 0, len(devs))
	for _, di := range devs {
		out = append(out, fromModelDeviceInfo(di))
	}
	return out, nil
}

// GetDevice returns one device row.
func (d *DB) GetDevice(ctx context.Context, deviceID string) (*model.Device, error) {
	return getDevice(ctx, d.ORM, deviceID)
}

// SaveDevice upserts a device row from the latest poll.
func (d *DB) SaveDevice(ctx context.Context, dev *model.Device) error {
	return upsertDevice(ctx, d.ORM, dev)
}

// DeleteDevice removes a device and its recorded metric history.
func (d *DB) DeleteDevice(ctx context.Context, deviceID string) error {
	return deleteDevice(ctx, d.ORM, deviceID)
}

// SaveMetricValue inserts a row into metric_values via ORM.
func (d *DB) SaveMetricValue(ctx context.Context, mv *model.MetricValue) error {
	return insertMetricValue(ctx, d.ORM, mv)
}

// DeviceMetrics returns all metric_values rows for a device, newest first.
func (d *DB) DeviceMetrics(ctx context.Context, deviceID string) ([]DeviceMetric, error) {
	return d.DeviceMetricsWithLimit(ctx, deviceID, 0)
}

// DeviceMetricsWithLimit works like DeviceMetrics but caps the row count when limit > 0.
func (d *DB) DeviceMetricsWithLimit(ctx context.Context, deviceID string, limit int) ([]DeviceMetric, error) {
	q := d.ORM.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("timestamp DESC, name")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.MetricValue
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]DeviceMetric, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromModelMetric(r))
	}
	return out, nil
}

// LatestMetrics returns, for each unique (device_id, name), the latest row by timestamp.
func (d *DB) LatestMetrics(ctx context.Context) ([]MetricLatest, error) {
	// subquery: latest timestamp per unique (device_id, name)
	sub := d.ORM.Table("metric_values as m").
		Select("m.device_id as device_id, m.name as name, MAX(m.timestamp) as ts").
		Group("m.device_id, m.name")
	var out []MetricLatest
	err := d.ORM.WithContext(ctx).
		Table("metric_values as m").
		Select("m.device_id, m.name, m.unit, m.is_numeric as numeric, COALESCE(m.value, 0.0) as value, m.text_value, m.timestamp").
		Joins("JOIN (?) as l ON l.device_id = m.device_id AND l.name = m.name AND l.ts = m.timestamp", sub).
		Order("m.device_id, m.name").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceLatest rewrites the latest_metric_values snapshot table in one
// transaction. Called after each published poll cycle.
func (d *DB) ReplaceLatest(ctx context.Context, rows []model.LatestMetricValue) error {
	return d.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.LatestMetricValue{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// LatestSnapshot returns the contents of the latest_metric_values table.
func (d *DB) LatestSnapshot(ctx context.Context) ([]model.LatestMetricValue, error) {
	var rows []model.LatestMetricValue
	if err := d.ORM.WithContext(ctx).Order("device_id, name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// StatsJSON returns aggregated stats in JSON for a given deviceID
func (d *DB) StatsJSON(ctx context.Context, deviceID string) ([]byte, error) {
	return d.StatsJSONWithLimit(ctx, deviceID, 0)
}

// StatsJSONWithLimit works like StatsJSON but limits number of metric rows returned when limit > 0.
func (d *DB) StatsJSONWithLimit(ctx context.Context, deviceID string, limit int) ([]byte, error) {
	devices, err := d.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	metrics, err := d.DeviceMetricsWithLimit(ctx, deviceID, limit)
	if err != nil {
		return nil, err
	}
	st := Stats{
		DeviceCount:        len(devices),
		Devices:            devices,
		DeviceMetricsCount: len(metrics),
		DeviceMetrics:      metrics,
	}
	return json.Marshal(st)
}
