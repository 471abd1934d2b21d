package state

import "testing"

func TestQueue_FlushRunsInOrder(t *testing.T) {
	queue := NewQueue()
	var order []int
	queue.Schedule(func() { order = append(order, 1) })
	queue.Schedule(func() { order = append(order, 2) })
	queue.Schedule(nil)

	if queue.Len() != 2 || queue.Total() != 2 {
		t.Fatalf("expected 2 waiting and 2 total, got %d and %d", queue.Len(), queue.Total())
	}
	if ran := queue.Flush(); ran != 2 {
		t.Fatalf("expected 2 deliveries, got %d", ran)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected order %v", order)
	}
	if ran := queue.Flush(); ran != 0 {
		t.Fatalf("expected empty flush, got %d", ran)
	}
	if queue.Total() != 2 {
		t.Fatalf("expected total to survive flush, got %d", queue.Total())
	}
}

func TestQueue_ScheduleDuringFlushWaits(t *testing.T) {
	queue := NewQueue()
	calls := 0
	queue.Schedule(func() {
		calls++
		queue.Schedule(func() { calls++ })
	})

	if ran := queue.Flush(); ran != 1 || calls != 1 {
		t.Fatalf("expected only the first delivery, ran=%d calls=%d", ran, calls)
	}
	if ran := queue.Flush(); ran != 1 || calls != 2 {
		t.Fatalf("expected nested delivery on second flush, ran=%d calls=%d", ran, calls)
	}
}

func TestQueue_PanicRequeuesRemainder(t *testing.T) {
	queue := NewQueue()
	var order []string
	queue.Schedule(func() { order = append(order, "a") })
	queue.Schedule(func() { panic("boom") })
	queue.Schedule(func() { order = append(order, "c") })

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		queue.Flush()
	}()

	if queue.Len() != 1 {
		t.Fatalf("expected 1 delivery requeued, got %d", queue.Len())
	}
	queue.Flush()
	if len(order) != 2 || order[0] != "a" || order[1] != "c" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestDirectScheduler(t *testing.T) {
	calls := 0
	DirectScheduler.Schedule(func() { calls++ })
	SchedulerFunc(nil).Schedule(func() { calls++ })
	if calls != 1 {
		t.Fatalf("expected 1 direct call, got %d", calls)
	}
}
