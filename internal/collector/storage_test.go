package collector

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hanna-collector/internal/reading"
)

func sampleMetrics() []reading.Metric {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	return []reading.Metric{
		{DeviceID: "D-1", Name: "ph", Unit: "pH", Numeric: true, Value: 7.21, Timestamp: at},
		{DeviceID: "D-1", Name: "temp", Unit: "°C", Numeric: true, Value: 24.5, Timestamp: at},
		{DeviceID: "D-1", Name: "phPumpColor", Text: "green", Timestamp: at},
	}
}

func TestStorageWritesJSONLAndCSV(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir, "json+csv", 16)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	for _, m := range sampleMetrics() {
		if err := s.Handle(m); err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
	}
	s.Close()

	jf, err := os.Open(filepath.Join(dir, "readings.jsonl"))
	if err != nil {
		t.Fatalf("open jsonl: %v", err)
	}
	defer jf.Close()
	var lines int
	sc := bufio.NewScanner(jf)
	for sc.Scan() {
		var obj map[string]any
		if err := json.Unmarshal(sc.Bytes(), &obj); err != nil {
			t.Fatalf("invalid jsonl line %q: %v", sc.Text(), err)
		}
		if obj["device_id"] != "D-1" {
			t.Fatalf("unexpected device_id in %v", obj)
		}
		lines++
	}
	if lines != 3 {
		t.Fatalf("expected 3 jsonl lines, got %d", lines)
	}

	cf, err := os.Open(filepath.Join(dir, "readings.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer cf.Close()
	rows, err := csv.NewReader(cf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "timestamp,device_id,metric,unit,value,text_value" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	// textual metric carries text_value, no value
	last := rows[3]
	if last[4] != "" || last[5] != "green" {
		t.Fatalf("unexpected textual row: %v", last)
	}
}

func TestStorageJSONOnly(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir, "json", 16)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if err := s.Handle(sampleMetrics()[0]); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	s.Close()

	if _, err := os.Stat(filepath.Join(dir, "readings.jsonl")); err != nil {
		t.Fatalf("jsonl missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "readings.csv")); !os.IsNotExist(err) {
		t.Fatalf("csv should not exist, stat err = %v", err)
	}
}

func TestStorageRejectsUnknownFileType(t *testing.T) {
	if _, err := NewStorage(t.TempDir(), "xml", 16); err == nil {
		t.Fatal("expected error for unsupported file type")
	}
}
