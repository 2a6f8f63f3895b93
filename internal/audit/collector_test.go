package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockStore struct {
	mu      sync.Mutex
	batches [][]Event
	err     error
}

func (m *mockStore) BatchInsert(ctx context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, append([]Event(nil), events...))
	return nil
}

func (m *mockStore) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func sampleEvent(action string) Event {
	return Event{Action: action, ResourceType: "plot", ResourceID: 7, RequestID: "req-1"}
}

func TestCollector_FlushOnBatchSize(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		records   int
		want      int
	}{
		{"exact batch size flushes", 3, 3, 3},
		{"under batch size waits", 5, 3, 0},
		{"two full batches", 2, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &mockStore{}
			c := NewCollector(ms, tt.batchSize, time.Hour, nil)
			for i := 0; i < tt.records; i++ {
				c.Record(sampleEvent("plot.update"))
			}
			if got := ms.total(); got != tt.want {
				t.Errorf("expected %d flushed events, got %d", tt.want, got)
			}
		})
	}
}

func TestCollector_RecordStampsTime(t *testing.T) {
	ms := &mockStore{}
	c := NewCollector(ms, 1, time.Hour, nil)
	c.Record(sampleEvent("plot.delete"))

	if len(ms.batches) != 1 || ms.batches[0][0].Time.IsZero() {
		t.Fatalf("expected a timestamped event, got %+v", ms.batches)
	}
}

func TestCollector_StopFlushesAndIsIdempotent(t *testing.T) {
	ms := &mockStore{}
	c := NewCollector(ms, 100, time.Hour, nil)

	finished := make(chan struct{})
	go func() {
		c.Start(context.Background())
		close(finished)
	}()

	c.Record(sampleEvent("membership.create"))
	c.Record(sampleEvent("membership.delete"))
	c.Stop()
	c.Stop()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	if got := ms.total(); got != 2 {
		t.Fatalf("expected 2 events after Stop, got %d", got)
	}
}

func TestCollector_TimerFlush(t *testing.T) {
	ms := &mockStore{}
	c := NewCollector(ms, 100, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	c.Record(sampleEvent("complaint.status"))

	deadline := time.Now().Add(2 * time.Second)
	for ms.total() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("expected the timer to flush the event")
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.Stop()
}

func TestCollector_FailedFlushReportsDropped(t *testing.T) {
	ms := &mockStore{err: errors.New("db down")}
	c := NewCollector(ms, 2, time.Hour, nil)
	var dropped int
	c.OnDropped(func(n int) { dropped += n })

	c.Record(sampleEvent("user.status"))
	c.Record(sampleEvent("user.status"))

	if dropped != 2 {
		t.Errorf("expected 2 dropped events, got %d", dropped)
	}
}

func TestCollector_ConcurrentRecords(t *testing.T) {
	ms := &mockStore{}
	c := NewCollector(ms, 10, time.Hour, nil)

	finished := make(chan struct{})
	go func() {
		c.Start(context.Background())
		close(finished)
	}()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(sampleEvent("plot.update"))
		}()
	}
	wg.Wait()
	c.Stop()
	<-finished

	if got := ms.total(); got != 50 {
		t.Fatalf("expected 50 events, got %d", got)
	}
}
