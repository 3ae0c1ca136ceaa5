package hannadb

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "hanna_test.sqlite")
	client, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestDeviceCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestClient(t)

	dev := &Device{
		DeviceID:      "BLDG-1",
		Model:         "BL122",
		ModelGroup:    "BL12x",
		Name:          "Pool Controller",
		TankName:      "Main Pool",
		Status:        "REGISTERED",
		BatteryStatus: "OK",
	}

	if err := client.SaveDevice(ctx, dev); err != nil {
		t.Fatalf("SaveDevice failed: %v", err)
	}

	got, err := client.GetDevice(ctx, dev.DeviceID)
	if err != nil {
		t.Fatalf("GetDevice failed: %v", err)
	}
	if got.Name != dev.Name || got.ModelGroup != dev.ModelGroup {
		t.Fatalf("GetDevice = %+v, want %+v", got, dev)
	}

	dev.Name = "Spa Controller"
	if err := client.SaveDevice(ctx, dev); err != nil {
		t.Fatalf("SaveDevice (update) failed: %v", err)
	}

	list, err := client.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 device, got %d", len(list))
	}
	if list[0].Name != "Spa Controller" {
		t.Fatalf("expected updated device name, got %q", list[0].Name)
	}

	if err := client.DeleteDevice(ctx, dev.DeviceID); err != nil {
		t.Fatalf("DeleteDevice failed: %v", err)
	}

	list, err = client.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices after delete failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected 0 devices after delete, got %d", len(list))
	}
}

func TestMetricHistoryAndLatest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestClient(t)

	if err := client.SaveDevice(ctx, &Device{DeviceID: "D-1", ModelGroup: "BL12x"}); err != nil {
		t.Fatalf("SaveDevice failed: %v", err)
	}

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	samples := []MetricValue{
		{DeviceID: "D-1", Name: "ph", Unit: "pH", Numeric: true, Value: 7.1, Timestamp: base},
		{DeviceID: "D-1", Name: "ph", Unit: "pH", Numeric: true, Value: 7.3, Timestamp: base.Add(5 * time.Minute)},
		{DeviceID: "D-1", Name: "temp", Unit: "°C", Numeric: true, Value: 24.0, Timestamp: base},
		{DeviceID: "D-1", Name: "phPumpColor", TextValue: "green", Timestamp: base},
	}
	for i := range samples {
		if err := client.SaveMetric(ctx, &samples[i]); err != nil {
			t.Fatalf("SaveMetric failed: %v", err)
		}
	}

	history, err := client.DeviceMetrics(ctx, "D-1", 0)
	if err != nil {
		t.Fatalf("DeviceMetrics failed: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 history rows, got %d", len(history))
	}

	limited, err := client.DeviceMetrics(ctx, "D-1", 2)
	if err != nil {
		t.Fatalf("DeviceMetrics with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 rows with limit, got %d", len(limited))
	}

	latest, err := client.LatestMetrics(ctx)
	if err != nil {
		t.Fatalf("LatestMetrics failed: %v", err)
	}
	if len(latest) != 3 {
		t.Fatalf("expected 3 latest rows (ph, temp, phPumpColor), got %d: %+v", len(latest), latest)
	}
	for _, m := range latest {
		if m.Name == "ph" && m.Value != 7.3 {
			t.Fatalf("latest ph = %v, want 7.3", m.Value)
		}
		if m.Name == "phPumpColor" && m.TextValue != "green" {
			t.Fatalf("latest phPumpColor = %q, want green", m.TextValue)
		}
	}
}

func TestStatsJSON(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestClient(t)

	if err := client.SaveDevice(ctx, &Device{DeviceID: "D-2", ModelGroup: "BL13x"}); err != nil {
		t.Fatalf("SaveDevice failed: %v", err)
	}
	if err := client.SaveMetric(ctx, &MetricValue{DeviceID: "D-2", Name: "orp", Unit: "mV", Numeric: true, Value: 650, Timestamp: time.Now()}); err != nil {
		t.Fatalf("SaveMetric failed: %v", err)
	}

	b, err := client.StatsJSON(ctx, "D-2", 0)
	if err != nil {
		t.Fatalf("StatsJSON failed: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("StatsJSON returned empty payload")
	}
}
