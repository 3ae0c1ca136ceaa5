package hannadb

import (
	"context"
	"time"

	dbpkg "hanna-collector/internal/db"
	"hanna-collector/internal/model"
)

// --------------------
// Metric DTOs
// --------------------

type MetricValue struct {
	DeviceID  string
	Name      string
	Unit      string
	Numeric   bool
	Value     float64
	TextValue string
	Timestamp time.Time
}

type MetricLatest struct {
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Numeric   bool      `json:"numeric"`
	Value     float64   `json:"value"`
	TextValue string    `json:"text_value"`
	Timestamp time.Time `json:"timestamp"`
}

func fromModelMetricLatest(ml dbpkg.MetricLatest) MetricLatest {
	return MetricLatest{
		DeviceID:  ml.DeviceID,
		Name:      ml.Name,
		Unit:      ml.Unit,
		Numeric:   ml.Numeric,
		Value:     ml.Value,
		TextValue: ml.TextValue,
		Timestamp: ml.Timestamp,
	}
}

// --------------------
// Metric history
// --------------------

// SaveMetric appends one metric value row.
func (c *Client) SaveMetric(ctx context.Context, mv *MetricValue) error {
	return c.db.SaveMetricValue(ctx, &model.MetricValue{
		DeviceID:  mv.DeviceID,
		Name:      mv.Name,
		Unit:      mv.Unit,
		Numeric:   mv.Numeric,
		Value:     mv.Value,
		TextValue: mv.TextValue,
		Timestamp: mv.Timestamp,
	})
}

// DeviceMetrics returns recorded rows for a device, newest first. limit <= 0
// returns everything.
func (c *Client) DeviceMetrics(ctx context.Context, deviceID string, limit int) ([]MetricValue, error) {
	rows, err := c.db.DeviceMetricsWithLimit(ctx, deviceID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]MetricValue, 0, len(rows))
	for _, r := range rows {
		out = append(out, MetricValue{
			DeviceID:  r.DeviceID,
			Name:      r.Name,
			Unit:      r.Unit,
			Numeric:   r.Numeric,
			Value:     r.Value,
			TextValue: r.TextValue,
			Timestamp: r.Timestamp,
		})
	}
	return out, nil
}

// LatestMetrics returns, for each unique (device, metric), the latest row.
func (c *Client) LatestMetrics(ctx context.Context) ([]MetricLatest, error) {
	list, err := c.db.LatestMetrics(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MetricLatest, 0, len(list))
	for _, ml := range list {
		out = append(out, fromModelMetricLatest(ml))
	}
	return out, nil
}

// StatsJSON returns aggregated stats in JSON for a given deviceID.
func (c *Client) StatsJSON(ctx context.Context, deviceID string, limit int) ([]byte, error) {
	return c.db.StatsJSONWithLimit(ctx, deviceID, limit)
}
