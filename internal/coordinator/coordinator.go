// Package coordinator drives the periodic refresh cycle against the Hanna
// Cloud API and hands out immutable PollResult snapshots to consumers.
package coordinator

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"hanna-collector/internal/hanna"
)

const (
	// DefaultIntervalMinutes matches the cloud dashboard's refresh cadence.
	DefaultIntervalMinutes = 5
	minIntervalMinutes     = 1
	maxIntervalMinutes     = 60
)

// API is the slice of the cloud client the coordinator needs. Satisfied by
// *hanna.Client; narrowed to an interface so tests can script failures.
type API interface {
	GetDevices(ctx context.Context) ([]hanna.Device, error)
	GetDeviceReadings(ctx context.Context, deviceIDs []string) (map[string]hanna.Reading, error)
}

// PollResult is one coherent fetch: the device list and the readings keyed by
// device ID, taken in the same cycle. It is immutable once published; a new
// cycle replaces the whole value.
type PollResult struct {
	Devices   []hanna.Device
	Readings  map[string]hanna.Reading
	FetchedAt time.Time
}

// Coordinator runs refresh cycles one at a time and publishes results
// atomically. Consumers read via Snapshot/LastError from any goroutine;
// writes happen only inside the single active cycle.
type Coordinator struct {
	api      API
	interval time.Duration

	// cycleMu makes cycles single-flight even if Start/Run/RefreshNow race.
	cycleMu  sync.Mutex
	snapshot atomic.Pointer[PollResult]

	mu      sync.Mutex
	lastErr error
	subs    []func()
}

// New builds a coordinator polling every intervalMinutes, clamped to 1..60.
// Zero or negative means the default of 5 minutes.
func New(api API, intervalMinutes int) *Coordinator {
	switch {
	case intervalMinutes <= 0:
		intervalMinutes = DefaultIntervalMinutes
	case intervalMinutes < minIntervalMinutes:
		intervalMinutes = minIntervalMinutes
	case intervalMinutes > maxIntervalMinutes:
		intervalMinutes = maxIntervalMinutes
	}
	return &Coordinator{
		api:      api,
		interval: time.Duration(intervalMinutes) * time.Minute,
	}
}

// Interval reports the effective refresh interval.
func (c *Coordinator) Interval() time.Duration { return c.interval }

// Start performs the first refresh synchronously. A non-nil return means the
// collector is not ready: nothing was published and the owner should treat
// setup as failed (its retry policy, not ours).
func (c *Coordinator) Start(ctx context.Context) error {
	return c.refresh(ctx)
}

// Run blocks, refreshing on the configured interval until ctx is cancelled.
// Failed cycles are logged and leave the previous snapshot visible.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.refresh(ctx); err != nil {
				log.Printf("coordinator: refresh failed: %v", err)
			}
		}
	}
}

// RefreshNow triggers one out-of-schedule cycle, still single-flight.
func (c *Coordinator) RefreshNow(ctx context.Context) error {
	return c.refresh(ctx)
}

// Snapshot returns the most recently published PollResult, or nil before the
// first successful cycle. The returned value must not be mutated.
func (c *Coordinator) Snapshot() *PollResult {
	return c.snapshot.Load()
}

// LastError reports the failure of the most recent cycle, nil after success.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe registers fn to run after every successful publish. Callbacks
// run on the cycle goroutine and must not block.
func (c *Coordinator) Subscribe(fn func()) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Coordinator) refresh(ctx context.Context) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	devices, err := c.api.GetDevices(ctx)
	if err != nil {
		return c.fail(err)
	}

	// An empty fleet is a successful cycle, not an error.
	if len(devices) == 0 {
		c.publish(&PollResult{
			Devices:   []hanna.Device{},
			Readings:  map[string]hanna.Reading{},
			FetchedAt: time.Now(),
		})
		return nil
	}

	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.ID)
	}

	readings, err := c.api.GetDeviceReadings(ctx, ids)
	if err != nil {
		return c.fail(err)
	}

	c.publish(&PollResult{
		Devices:   devices,
		Readings:  readings,
		FetchedAt: time.Now(),
	})
	return nil
}

// publish swaps the snapshot in a single pointer store, clears the error
// state, and notifies subscribers. Consumers can never observe a devices
// list paired with another cycle's readings.
func (c *Coordinator) publish(result *PollResult) {
	c.snapshot.Store(result)

	c.mu.Lock()
	c.lastErr = nil
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// fail normalizes err to *hanna.UpdateFailed, records it, and leaves the
// previous snapshot untouched.
func (c *Coordinator) fail(err error) error {
	uf := hanna.WrapUpdateFailed(err)
	c.mu.Lock()
	c.lastErr = uf
	c.mu.Unlock()
	return uf
}
