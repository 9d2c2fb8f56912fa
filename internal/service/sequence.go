package service

import (
	"context"

	"github.com/flexprice/fiscal/internal/domain/device"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/logger"
)

// SequenceAllocator hands out per device invoice sequence numbers.
// A returned number is consumed even if the caller never uses it.
type SequenceAllocator interface {
	NextSequence(ctx context.Context, deviceID string) (int64, error)
}

type sequenceAllocator struct {
	devices device.Repository
	logger  *logger.Logger
}

func NewSequenceAllocator(params ServiceParams) SequenceAllocator {
	return &sequenceAllocator{
		devices: params.DeviceRepo,
		logger:  params.Logger,
	}
}

func (s *sequenceAllocator) NextSequence(ctx context.Context, deviceID string) (int64, error) {
	if deviceID == "" {
		return 0, ierr.NewError("device id is required").
			WithHint("Device ID is required").
			Mark(ierr.ErrValidation)
	}

	seq, err := s.devices.NextSequence(ctx, deviceID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return 0, ierr.WithError(err).Mark(device.ErrDeviceNotFound)
		}
		return 0, err
	}

	s.logger.Debugw("allocated sequence", "device_id", deviceID, "sequence", seq)
	return seq, nil
}
