package service

import (
	"sort"
	"sync"
	"testing"

	"github.com/flexprice/fiscal/internal/domain/device"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/stretchr/testify/suite"
)

type SequenceAllocatorSuite struct {
	serviceSuite
	allocator SequenceAllocator
}

func TestSequenceAllocator(t *testing.T) {
	suite.Run(t, new(SequenceAllocatorSuite))
}

func (s *SequenceAllocatorSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.allocator = NewSequenceAllocator(s.params)
}

func (s *SequenceAllocatorSuite) TestNextSequenceIncrements() {
	c := s.fiscalCompany(12345678)
	p := s.CreatePremise(c.ID, "PP1", movable(), types.RegistrationStatusRegistered)
	d := s.CreateDevice(p.ID, "BL1", 5, true)

	first, err := s.allocator.NextSequence(s.GetContext(), d.ID)
	s.NoError(err)
	second, err := s.allocator.NextSequence(s.GetContext(), d.ID)
	s.NoError(err)

	s.Equal(int64(6), first)
	s.Equal(int64(7), second)
	s.Equal(int64(7), s.GetStores().DeviceRepo.Counter(s.GetContext(), d.ID))
}

func (s *SequenceAllocatorSuite) TestConcurrentCallersGetDistinctValues() {
	c := s.fiscalCompany(12345678)
	p := s.CreatePremise(c.ID, "PP1", movable(), types.RegistrationStatusRegistered)
	d := s.CreateDevice(p.ID, "BL1", 0, true)

	const n = 200
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		got  = make([]int64, 0, n)
		errs = make([]error, 0)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.allocator.NextSequence(s.GetContext(), d.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			got = append(got, seq)
		}()
	}
	wg.Wait()

	s.Empty(errs)
	s.Require().Len(got, n)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, seq := range got {
		s.Equal(int64(i+1), seq)
	}
	s.Equal(int64(n), s.GetStores().DeviceRepo.Counter(s.GetContext(), d.ID))
}

func (s *SequenceAllocatorSuite) TestUnknownDevice() {
	_, err := s.allocator.NextSequence(s.GetContext(), "dev_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
	s.True(ierr.Is(err, device.ErrDeviceNotFound))
}

func (s *SequenceAllocatorSuite) TestEmptyDeviceID() {
	_, err := s.allocator.NextSequence(s.GetContext(), "")
	s.True(ierr.IsValidation(err))
}
