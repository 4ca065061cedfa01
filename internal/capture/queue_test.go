package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	var dropped []int
	q := NewQueue(2, func(v int) { dropped = append(dropped, v) })

	if q.Push(1) || q.Push(2) {
		t.Fatal("push into non-full queue reported a drop")
	}
	if !q.Push(3) {
		t.Fatal("push into full queue did not report a drop")
	}

	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	if len(dropped) != 1 || dropped[0] != 1 {
		t.Errorf("dropped = %v, want [1]", dropped)
	}
	if q.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", q.Dropped())
	}

	ctx := context.Background()
	for _, want := range []int{2, 3} {
		got, err := q.Pop(ctx)
		if err != nil {
			t.Fatalf("Pop() error = %v", err)
		}
		if got != want {
			t.Errorf("Pop() = %d, want %d", got, want)
		}
	}
}

func TestQueue_PopLatestSkipsStaleItems(t *testing.T) {
	var dropped []int
	q := NewQueue(2, func(v int) { dropped = append(dropped, v) })
	q.Push(1)
	q.Push(2)

	got, err := q.PopLatest(context.Background())
	if err != nil {
		t.Fatalf("PopLatest() error = %v", err)
	}
	if got != 2 {
		t.Errorf("PopLatest() = %d, want the newest item 2", got)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if len(dropped) != 1 || dropped[0] != 1 {
		t.Errorf("dropped = %v, want [1]", dropped)
	}

	q.Push(3)
	if got, ok := q.TryPopLatest(); !ok || got != 3 {
		t.Errorf("TryPopLatest() = %d, %v; want 3, true", got, ok)
	}
	if _, ok := q.TryPopLatest(); ok {
		t.Error("TryPopLatest() on empty queue reported an item")
	}
	if q.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", q.Dropped())
	}
}

func TestQueue_PopLatestAfterClose(t *testing.T) {
	q := NewQueue[int](2, nil)
	q.Push(1)
	q.Close()

	if v, err := q.PopLatest(context.Background()); err != nil || v != 1 {
		t.Errorf("PopLatest() = %d, %v; want 1, nil", v, err)
	}
	if _, err := q.PopLatest(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("PopLatest() error = %v, want ErrQueueClosed", err)
	}
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := NewQueue[string](DefaultQueueSize, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	var err error
	go func() {
		defer wg.Done()
		got, err = q.Pop(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push("frame")
	wg.Wait()

	if err != nil || got != "frame" {
		t.Errorf("Pop() = %q, %v", got, err)
	}
}

func TestQueue_PopHonoursContext(t *testing.T) {
	q := NewQueue[int](DefaultQueueSize, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Pop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Pop() error = %v, want DeadlineExceeded", err)
	}
}

func TestQueue_Close(t *testing.T) {
	var dropped []int
	q := NewQueue(2, func(v int) { dropped = append(dropped, v) })
	q.Push(1)
	q.Close()
	q.Close()

	if !q.Push(2) {
		t.Error("push after close should be dropped")
	}

	// Items queued before Close are still delivered.
	v, err := q.Pop(context.Background())
	if err != nil || v != 1 {
		t.Errorf("Pop() = %d, %v; want 1, nil", v, err)
	}

	if _, err := q.Pop(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Pop() error = %v, want ErrQueueClosed", err)
	}
	if len(dropped) != 1 || dropped[0] != 2 {
		t.Errorf("dropped = %v, want [2]", dropped)
	}
}

func TestQueue_Drain(t *testing.T) {
	var dropped []int
	q := NewQueue(3, func(v int) { dropped = append(dropped, v) })
	q.Push(1)
	q.Push(2)
	q.Drain()

	if q.Len() != 0 {
		t.Errorf("Len() = %d after Drain", q.Len())
	}
	if len(dropped) != 2 {
		t.Errorf("dropped = %v, want two items", dropped)
	}
}

func TestScaleFactor(t *testing.T) {
	tests := []struct {
		index int
		want  float64
	}{
		{0, 1.0},
		{1, 0.66},
		{2, 0.33},
		{3, 1.0},
		{-1, 0.33},
	}
	for _, tt := range tests {
		if got := ScaleFactor(tt.index); got != tt.want {
			t.Errorf("ScaleFactor(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}
