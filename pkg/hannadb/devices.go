// Package hannadb exposes a stable API for third-party packages to access
// the recorded poll history database without importing internal packages.
package hannadb

import (
	"context"

	dbpkg "hanna-collector/internal/db"
	"hanna-collector/internal/model"
)

// Client wraps the history database.
type Client struct{ db *dbpkg.DB }

// Open opens the SQLite database (runs migrations) and returns a client.
func Open(path string) (*Client, error) {
	d, err := dbpkg.Open(path)
	if err != nil {
		return nil, err
	}
	return &Client{db: d}, nil
}

// Close closes the underlying DB.
func (c *Client) Close() error { return c.db.Close() }

// --------------------
// Device DTOs and converters
// --------------------

type Device struct {
	DeviceID      string
	Model         string
	ModelGroup    string
	Name          string
	TankName      string
	Status        string
	BatteryStatus string
	DeviceVersion string
	LastUpdated   string
}

func toModelDevice(d *Device) *model.Device {
	if d == nil {
		return nil
	}
	return &model.Device{
		DeviceID:      d.DeviceID,
		Model:         d.Model,
		ModelGroup:    d.ModelGroup,
		Name:          d.Name,
		TankName:      d.TankName,
		Status:        d.Status,
		BatteryStatus: d.BatteryStatus,
		DeviceVersion: d.DeviceVersion,
		LastUpdated:   d.LastUpdated,
	}
}

func fromModelDevice(d *model.Device) *Device {
	if d == nil {
		return nil
	}
	return &Device{
		DeviceID:      d.DeviceID,
		Model:         d.Model,
		ModelGroup:    d.ModelGroup,
		Name:          d.Name,
		TankName:      d.TankName,
		Status:        d.Status,
		BatteryStatus: d.BatteryStatus,
		DeviceVersion: d.DeviceVersion,
		LastUpdated:   d.LastUpdated,
	}
}

// --------------------
// Device management
// --------------------

// SaveDevice upserts a device row.
func (c *Client) SaveDevice(ctx context.Context, d *Device) error {
	return c.db.SaveDevice(ctx, toModelDevice(d))
}

func (c *Client) GetDevice(ctx context.Context, deviceID string) (*Device, error) {
	dev, err := c.db.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return fromModelDevice(dev), nil
}

func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	list, err := c.db.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Device, 0, len(list))
	for _, d := range list {
		out = append(out, Device{
			DeviceID:      d.DeviceID,
			Name:          d.Name,
			ModelGroup:    d.ModelGroup,
			TankName:      d.TankName,
			Status:        d.Status,
			BatteryStatus: d.BatteryStatus,
			DeviceVersion: d.DeviceVersion,
			LastUpdated:   d.LastUpdated,
		})
	}
	return out, nil
}

func (c *Client) DeleteDevice(ctx context.Context, deviceID string) error {
	return c.db.DeleteDevice(ctx, deviceID)
}
