package reading

import (
	"time"

	"hanna-collector/internal/hanna"
	"hanna-collector/internal/model"
)

// Snapshot assembles one poll cycle into the export DTO: every device with its
// flattened metrics. Devices without a reading appear with an empty metric
// list so the fleet stays visible.
func Snapshot(devices []hanna.Device, readings map[string]hanna.Reading, at time.Time) model.PollSnapshot {
	snap := model.PollSnapshot{
		Devices:   make([]model.DeviceSnapshot, 0, len(devices)),
		Timestamp: at,
	}
	for _, d := range devices {
		ds := model.DeviceSnapshot{
			DeviceID:      d.ID,
			Name:          d.DisplayName(),
			ModelGroup:    d.ModelGroup,
			Status:        d.Status,
			BatteryStatus: d.BatteryStatus,
			TankName:      d.Info.TankName,
			Metrics:       []model.MetricSnapshot{},
		}
		if r, ok := readings[d.ID]; ok {
			for _, m := range Flatten(r, at) {
				ms := model.MetricSnapshot{
					Name:      m.Name,
					Unit:      m.Unit,
					Numeric:   m.Numeric,
					TextValue: m.Text,
					Timestamp: m.Timestamp,
				}
				if m.Numeric {
					v := m.Value
					ms.Value = &v
				}
				ds.Metrics = append(ds.Metrics, ms)
			}
		}
		snap.Devices = append(snap.Devices, ds)
	}
	return snap
}
