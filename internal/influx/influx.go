// Package influx delivers published poll cycles to an InfluxDB 1.x backend.
package influx

import (
	"fmt"
	"time"

	"github.com/influxdata/influxdb1-client/v2"

	"hanna-collector/internal/hanna"
	"hanna-collector/internal/reading"
)

// Config selects the InfluxDB endpoint and database.
type Config struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// NewClient builds the HTTP client for the configured backend.
func NewClient(cfg Config) (client.Client, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("influx client: %w", err)
	}
	return c, nil
}

// WriteMetrics batches one poll cycle's numeric metrics and writes them.
// One point per device per cycle, measurement "water_chemistry", fields named
// after the flattened metrics. Textual metrics are skipped; Influx fields
// stay homogeneous per name.
func WriteMetrics(c client.Client, database string, devices []hanna.Device, metrics []reading.Metric, eventTime time.Time) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  database,
		Precision: "s",
	})
	if err != nil {
		return fmt.Errorf("influx batch: %w", err)
	}

	byID := make(map[string]hanna.Device, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}

	fields := make(map[string]map[string]interface{})
	for _, m := range metrics {
		if !m.Numeric {
			continue
		}
		f, ok := fields[m.DeviceID]
		if !ok {
			f = make(map[string]interface{})
			fields[m.DeviceID] = f
		}
		f[m.Name] = m.Value
	}

	for deviceID, f := range fields {
		d := byID[deviceID]
		tags := map[string]string{
			"device_id":   deviceID,
			"device_name": d.DisplayName(),
			"model_group": d.ModelGroup,
		}
		point, err := client.NewPoint("water_chemistry", tags, f, eventTime)
		if err != nil {
			return fmt.Errorf("influx point for %s: %w", deviceID, err)
		}
		bp.AddPoint(point)
	}

	if len(bp.Points()) == 0 {
		return nil
	}
	return c.Write(bp)
}
