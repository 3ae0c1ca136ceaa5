package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"hanna-collector/internal/model"
)

// WriteJSON writes a poll snapshot to a JSON file with pretty formatting.
func WriteJSON(path string, snap model.PollSnapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteCSV flattens a poll snapshot and writes it to a CSV file.
// Columns: device_id,device_name,model_group,status,metric,unit,value,text_value,timestamp
func WriteCSV(path string, snap model.PollSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	headers := []string{"device_id", "device_name", "model_group", "status", "metric", "unit", "value", "text_value", "timestamp"}
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, d := range snap.Devices {
		for _, m := range d.Metrics {
			var value string
			if m.Value != nil {
				value = fmt.Sprintf("%g", *m.Value)
			}
			rec := []string{
				d.DeviceID,
				d.Name,
				d.ModelGroup,
				d.Status,
				m.Name,
				m.Unit,
				value,
				m.TextValue,
				timeToRFC3339(m.Timestamp),
			}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

func timeToRFC3339(t time.Time) string { return t.Format(time.RFC3339Nano) }
