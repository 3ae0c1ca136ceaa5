package reading

import (
	"testing"
	"time"

	"hanna-collector/internal/hanna"
)

func TestSnapshot(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	devices := []hanna.Device{
		{ID: "A", Name: "Pool", ModelGroup: "BL12x", Status: "REGISTERED"},
		{ID: "B", ModelGroup: "BL13x"},
	}
	readings := map[string]hanna.Reading{
		"A": {
			DeviceID: "A",
			Messages: hanna.Messages{
				Parameters:      []hanna.Parameter{{Name: "ph", Value: 7.1}},
				ConnectionState: "online",
			},
		},
	}

	snap := Snapshot(devices, readings, at)
	if !snap.Timestamp.Equal(at) {
		t.Fatalf("timestamp = %v, want %v", snap.Timestamp, at)
	}
	if len(snap.Devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(snap.Devices))
	}

	a := snap.Devices[0]
	if a.DeviceID != "A" || a.Name != "Pool" {
		t.Fatalf("device A = %+v", a)
	}
	if len(a.Metrics) != 2 {
		t.Fatalf("device A has %d metrics, want 2 (ph + connectionState)", len(a.Metrics))
	}
	if a.Metrics[0].Name != "ph" || a.Metrics[0].Value == nil || *a.Metrics[0].Value != 7.1 {
		t.Fatalf("ph metric = %+v", a.Metrics[0])
	}

	// device without a reading keeps an empty, non-nil metric list
	b := snap.Devices[1]
	if b.Name != "Device B" {
		t.Fatalf("fallback name = %q, want generated placeholder", b.Name)
	}
	if b.Metrics == nil || len(b.Metrics) != 0 {
		t.Fatalf("device B metrics = %v, want empty slice", b.Metrics)
	}
}
