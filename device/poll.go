package device

import (
	"context"
	"errors"
)

// A Poller fetches the current reading of one device. The real
// controller backs this with 1-wire and relay-board adapters; tests use
// fakes.
type Poller func(ctx context.Context, id string) (Reading, error)

// PollJob returns a scheduler job body that refreshes every registered
// device through poll. Individual device failures are collected but do
// not stop the sweep.
func PollJob(reg *Registry, poll Poller) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for _, d := range reg.List() {
			r, err := poll(ctx, d.ID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			reg.SetReading(d.ID, r)
		}
		return errors.Join(errs...)
	}
}
