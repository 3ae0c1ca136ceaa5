package collector

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hanna-collector/internal/reading"
)

// Storage writes flattened metric records to JSONL and/or CSV asynchronously.
type Storage struct {
	dir        string
	q          chan reading.Metric
	enableJSON bool
	enableCSV  bool

	jsonFile   *os.File
	jsonWriter *bufio.Writer

	csvFile   *os.File
	csvWriter *csv.Writer

	closed chan struct{}
}

// NewStorage ensures the output directory exists, opens requested files, and starts background writers.
func NewStorage(dir, fileType string, maxQueue int) (*Storage, error) {
	if dir == "" {
		dir = "data"
	}
	if st, err := os.Stat(dir); err == nil && !st.IsDir() {
		dir = filepath.Dir(dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	ft := strings.ToLower(strings.TrimSpace(fileType))
	enableJSON := false
	enableCSV := false
	switch ft {
	case "json", "jsonl":
		enableJSON = true
	case "csv":
		enableCSV = true
	case "json+csv", "csv+json", "both", "all", "":
		enableJSON = true
		enableCSV = true
	default:
		return nil, fmt.Errorf("unsupported storage file_type %q", fileType)
	}
	if !enableJSON && !enableCSV {
		return nil, errors.New("storage must enable at least one output")
	}

	s := &Storage{
		dir:        dir,
		q:          make(chan reading.Metric, maxQueueIfPositive(maxQueue, 1000)),
		enableJSON: enableJSON,
		enableCSV:  enableCSV,
		closed:     make(chan struct{}),
	}

	if s.enableJSON {
		jsonPath := filepath.Join(dir, "readings.jsonl")
		jf, err := os.OpenFile(jsonPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open json output: %w", err)
		}
		s.jsonFile = jf
		s.jsonWriter = bufio.NewWriterSize(jf, 64*1024)
	}

	if s.enableCSV {
		csvPath := filepath.Join(dir, "readings.csv")
		cf, err := os.OpenFile(csvPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			if s.jsonFile != nil {
				s.jsonFile.Close()
			}
			return nil, fmt.Errorf("open csv output: %w", err)
		}
		s.csvFile = cf
		s.csvWriter = csv.NewWriter(cf)
		if off, _ := cf.Seek(0, io.SeekEnd); off == 0 {
			header := []string{"timestamp", "device_id", "metric", "unit", "value", "text_value"}
			if err := s.csvWriter.Write(header); err != nil {
				if s.jsonFile != nil {
					s.jsonFile.Close()
				}
				cf.Close()
				return nil, fmt.Errorf("write csv header: %w", err)
			}
			s.csvWriter.Flush()
			if err := s.csvWriter.Error(); err != nil {
				if s.jsonFile != nil {
					s.jsonFile.Close()
				}
				cf.Close()
				return nil, err
			}
		}
	}

	go func() {
		for m := range s.q {
			if s.enableJSON {
				_ = s.writeJSONL(m)
			}
			if s.enableCSV {
				_ = s.writeCSV(m)
			}
		}
		if s.jsonWriter != nil {
			s.jsonWriter.Flush()
		}
		if s.csvWriter != nil {
			s.csvWriter.Flush()
		}
		close(s.closed)
	}()

	return s, nil
}

func maxQueueIfPositive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (s *Storage) Handle(m reading.Metric) error {
	select {
	case s.q <- m:
		return nil
	default:
		return errors.New("storage queue full")
	}
}

// Close stops writers and closes files.
func (s *Storage) Close() {
	close(s.q)
	<-s.closed
	if s.jsonFile != nil {
		s.jsonFile.Close()
	}
	if s.csvFile != nil {
		s.csvFile.Close()
	}
}

func (s *Storage) writeJSONL(m reading.Metric) error {
	if s.jsonWriter == nil {
		return nil
	}
	obj := map[string]any{
		"timestamp": m.Timestamp.Format(time.RFC3339Nano),
		"device_id": m.DeviceID,
		"metric":    m.Name,
		"unit":      m.Unit,
	}
	if m.Numeric {
		obj["value"] = m.Value
	} else {
		obj["text_value"] = m.Text
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if _, err := s.jsonWriter.Write(b); err != nil {
		return err
	}
	if _, err := s.jsonWriter.WriteString("\n"); err != nil {
		return err
	}
	return nil
}

func (s *Storage) writeCSV(m reading.Metric) error {
	if s.csvWriter == nil {
		return nil
	}
	var value string
	if m.Numeric {
		value = fmt.Sprintf("%g", m.Value)
	}
	rec := []string{
		m.Timestamp.Format(time.RFC3339Nano),
		m.DeviceID,
		m.Name,
		m.Unit,
		value,
		m.Text,
	}
	if err := s.csvWriter.Write(rec); err != nil {
		return err
	}
	return nil
}
