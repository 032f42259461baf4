package macro

import (
	"sync"
	"time"

	"macrofox/internal/utils"
)

// Statistics holds runtime activation statistics for one scheduler run.
type Statistics struct {
	StartTime      time.Time
	Activations    int
	PerSlot        [SlotCount]int
	LastActivation time.Time
	now            func() time.Time
	mu             sync.RWMutex
}

// NewStatistics creates new statistics on the wall clock
func NewStatistics() *Statistics {
	return NewStatisticsWithClock(time.Now)
}

// NewStatisticsWithClock creates statistics whose uptime and rate are
// measured with now.
func NewStatisticsWithClock(now func() time.Time) *Statistics {
	if now == nil {
		now = time.Now
	}
	return &Statistics{
		StartTime: now(),
		now:       now,
	}
}

func (s *Statistics) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Reset clears all counters and restarts the uptime at now
func (s *Statistics) Reset(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.StartTime = now
	s.Activations = 0
	s.PerSlot = [SlotCount]int{}
	s.LastActivation = time.Time{}
}

// Record records one activation of slot at the given time
func (s *Statistics) Record(slot int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Activations++
	if validSlot(slot) {
		s.PerSlot[slot]++
	}
	s.LastActivation = at
}

// SlotCount returns how many times slot fired in this run
func (s *Statistics) SlotCount(slot int) int {
	if !validSlot(slot) {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.PerSlot[slot]
}

// ActivationsPerMinute calculates activations per minute since StartTime
func (s *Statistics) ActivationsPerMinute() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perMinute()
}

func (s *Statistics) perMinute() float64 {
	elapsed := s.clock().Sub(s.StartTime).Minutes()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Activations) / elapsed
}

// GetStats returns formatted statistics
func (s *Statistics) GetStats() (activations int, apm float64, uptime string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activations = s.Activations
	apm = s.perMinute()
	uptime = utils.FormatDuration(s.clock().Sub(s.StartTime))
	return
}
