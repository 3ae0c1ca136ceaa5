package collector

import (
	"context"
	"log"
	"net/http"
	"sort"

	client "github.com/influxdata/influxdb1-client/v2"

	"hanna-collector/internal/coordinator"
	dbpkg "hanna-collector/internal/db"
	"hanna-collector/internal/hanna"
	"hanna-collector/internal/influx"
	"hanna-collector/internal/model"
	"hanna-collector/internal/reading"
	"hanna-collector/internal/utils"
)

// MetricHandler receives each flattened metric after a published poll cycle.
type MetricHandler func(reading.Metric) error

// Manager wires the polling coordinator to the configured sinks and runs the
// refresh loop until the context is cancelled.
type Manager struct {
	Cfg      RootConfig
	OnMetric MetricHandler // optional extra handler per metric
}

func (m *Manager) Run(ctx context.Context) error {
	api := hanna.NewClient(&http.Client{}, m.Cfg.Hanna.Email, m.Cfg.Hanna.Password)
	if m.Cfg.Hanna.BaseURL != "" {
		api.BaseURL = m.Cfg.Hanna.BaseURL
	}

	coord := coordinator.New(api, m.Cfg.Hanna.UpdateIntervalMinutes)

	// optional file storage
	var store *Storage
	if m.Cfg.System.Storage.Enabled {
		s, err := NewStorage(
			m.Cfg.System.Storage.Dir,
			m.Cfg.System.Storage.FileType,
			m.Cfg.System.Storage.MaxQueueSize,
		)
		if err != nil {
			log.Printf("storage init failed: %v (continuing without storage)", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	// optional sqlite history
	var database *dbpkg.DB
	if m.Cfg.System.SQLite.Enabled {
		d, err := dbpkg.Open(m.Cfg.System.SQLite.Path)
		if err != nil {
			log.Printf("sqlite init failed: %v (continuing without sqlite)", err)
		} else {
			database = d
			defer database.Close()
		}
	}

	// optional influx sink
	var influxClient client.Client
	if m.Cfg.System.Influx.Enabled {
		ic, err := influx.NewClient(influx.Config{
			URL:      m.Cfg.System.Influx.URL,
			Username: m.Cfg.System.Influx.Username,
			Password: m.Cfg.System.Influx.Password,
			Database: m.Cfg.System.Influx.Database,
		})
		if err != nil {
			log.Printf("influx init failed: %v (continuing without influx)", err)
		} else {
			influxClient = ic
			defer influxClient.Close()
		}
	}

	// TTL cache to avoid re-writing unchanged numeric values
	vc := utils.NewValueCache(m.Cfg.System.Storage.CacheTTL)

	coord.Subscribe(func() {
		m.handlePublish(ctx, coord, store, database, influxClient, vc)
	})

	// First refresh is synchronous: a failure here means we never became
	// ready and the caller decides whether to retry the whole process.
	if err := coord.Start(ctx); err != nil {
		return err
	}
	log.Printf("collector ready, refreshing every %s", coord.Interval())

	coord.Run(ctx)
	return nil
}

// handlePublish fans one published cycle out to every configured sink.
func (m *Manager) handlePublish(ctx context.Context, coord *coordinator.Coordinator, store *Storage, database *dbpkg.DB, influxClient client.Client, vc *utils.ValueCache) {
	snap := coord.Snapshot()
	if snap == nil {
		return
	}

	ids := make([]string, 0, len(snap.Readings))
	for id := range snap.Readings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	metrics := make([]reading.Metric, 0, len(ids)*8)
	for _, id := range ids {
		metrics = append(metrics, reading.Flatten(snap.Readings[id], snap.FetchedAt)...)
	}

	for _, mv := range metrics {
		if mv.Numeric {
			key := mv.DeviceID + "|" + mv.Name
			if old, ok := vc.GetValue(key); ok && utils.FloatsEqual(old, mv.Value) {
				continue
			}
			vc.SetValue(key, mv.Value)
		}
		if m.OnMetric != nil {
			if err := m.OnMetric(mv); err != nil {
				log.Printf("custom handler error: %v", err)
			}
		}
		if store != nil {
			if err := store.Handle(mv); err != nil {
				log.Printf("storage write dropped (%s/%s): %v", mv.DeviceID, mv.Name, err)
			}
		}
		if database != nil {
			if err := database.SaveMetricValue(ctx, &model.MetricValue{
				DeviceID:  mv.DeviceID,
				Name:      mv.Name,
				Unit:      mv.Unit,
				Numeric:   mv.Numeric,
				Value:     mv.Value,
				TextValue: mv.Text,
				Timestamp: mv.Timestamp,
			}); err != nil {
				log.Printf("sqlite metric insert failed (%s/%s): %v", mv.DeviceID, mv.Name, err)
			}
		}
	}

	if database != nil {
		for _, d := range snap.Devices {
			if err := database.SaveDevice(ctx, &model.Device{
				DeviceID:      d.ID,
				Model:         d.Model,
				ModelGroup:    d.ModelGroup,
				Name:          d.DisplayName(),
				TankName:      d.Info.TankName,
				Status:        d.Status,
				BatteryStatus: d.BatteryStatus,
				DeviceVersion: d.Info.DeviceVersion,
				LastUpdated:   d.LastUpdated,
			}); err != nil {
				log.Printf("sqlite device upsert failed (%s): %v", d.ID, err)
			}
		}
		if err := database.ReplaceLatest(ctx, latestRows(metrics)); err != nil {
			log.Printf("sqlite latest snapshot failed: %v", err)
		}
	}

	if influxClient != nil {
		if err := influx.WriteMetrics(influxClient, m.Cfg.System.Influx.Database, snap.Devices, metrics, snap.FetchedAt); err != nil {
			log.Printf("influx write failed: %v", err)
		}
	}

	log.Printf("published cycle: %d devices, %d readings, %d metrics",
		len(snap.Devices), len(snap.Readings), len(metrics))
}

// latestRows converts one cycle's flattened metrics into rows for the
// latest_metric_values table. The cycle already holds at most one value per
// (device, metric) pair.
func latestRows(metrics []reading.Metric) []model.LatestMetricValue {
	rows := make([]model.LatestMetricValue, 0, len(metrics))
	for _, mv := range metrics {
		rows = append(rows, model.LatestMetricValue{
			DeviceID:  mv.DeviceID,
			Name:      mv.Name,
			Unit:      mv.Unit,
			Numeric:   mv.Numeric,
			Value:     mv.Value,
			TextValue: mv.Text,
			Timestamp: mv.Timestamp,
		})
	}
	return rows
}
