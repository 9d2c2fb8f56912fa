package testutil

import (
	"context"

	"github.com/flexprice/fiscal/internal/domain/device"
)

// InMemoryDeviceStore implements device.Repository. NextSequence
// increments under the store write lock.
type InMemoryDeviceStore struct {
	*InMemoryStore[device.Device]
}

func NewInMemoryDeviceStore() *InMemoryDeviceStore {
	return &InMemoryDeviceStore{InMemoryStore: NewInMemoryStore[device.Device]()}
}

func (s *InMemoryDeviceStore) Add(ctx context.Context, d *device.Device) error {
	return s.InMemoryStore.Create(ctx, d.ID, *d)
}

func (s *InMemoryDeviceStore) Get(ctx context.Context, id string) (*device.Device, error) {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *InMemoryDeviceStore) NextSequence(ctx context.Context, id string) (int64, error) {
	var seq int64
	err := s.Mutate(ctx, id, func(d device.Device) (device.Device, error) {
		d.SequenceCounter++
		seq = d.SequenceCounter
		return d, nil
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// Counter returns the stored counter of a device, -1 when it does not exist
func (s *InMemoryDeviceStore) Counter(ctx context.Context, id string) int64 {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return -1
	}
	return d.SequenceCounter
}
