// Package device holds the controller's in-memory device model: the
// registry the poll job refreshes and the dashboard reads.
package device

import (
	"sort"
	"sync"
	"time"
)

type Reading struct {
	Value float64   `json:"value"`
	Unit  string    `json:"unit"`
	Time  time.Time `json:"time"`
}

type Device struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Reading Reading `json:"reading"`
}

// Registry is the shared device table. The poll job writes, request
// handlers read; everything goes through the lock and works on copies.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Device
}

func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]Device)}
}

func (reg *Registry) Add(d Device) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.devices[d.ID] = d
}

func (reg *Registry) Get(id string) (Device, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	d, found := reg.devices[id]
	return d, found
}

// List returns all devices ordered by ID.
func (reg *Registry) List() []Device {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	all := make([]Device, 0, len(reg.devices))
	for _, d := range reg.devices {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// SetReading records a new reading for a known device.
func (reg *Registry) SetReading(id string, r Reading) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	d, found := reg.devices[id]
	if !found {
		return false
	}
	d.Reading = r
	reg.devices[id] = d
	return true
}
