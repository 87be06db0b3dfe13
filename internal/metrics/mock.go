package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
type Mock struct {
	mu sync.Mutex

	SessionLoadsCount        int
	SessionLoadFailuresCount int
	ActionCalls              []struct {
		Action  string
		Outcome string
	}
	ActionDurations []struct {
		Action  string
		Seconds float64
	}
	StartupTime float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncSessionLoads() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionLoadsCount++
}

func (m *Mock) IncSessionLoadFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionLoadFailuresCount++
}

func (m *Mock) IncAction(action, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActionCalls = append(m.ActionCalls, struct {
		Action  string
		Outcome string
	}{action, outcome})
}

func (m *Mock) ObserveActionDuration(action string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActionDurations = append(m.ActionDurations, struct {
		Action  string
		Seconds float64
	}{action, seconds})
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = seconds
}
