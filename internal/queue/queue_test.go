package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/coredump-systems/tinylog/internal/wire"
)

func TestPushPopOrderPreserved(t *testing.T) {
	q := New(4, Drop, time.Millisecond)

	for i := uint8(1); i <= 3; i++ {
		q.Push(wire.Unit{TaskID: 1, Sequence: i})
	}

	for i := uint8(1); i <= 3; i++ {
		u, ok := q.PopAny()
		if !ok {
			t.Fatalf("expected a unit at step %d", i)
		}
		if u.Sequence != i {
			t.Errorf("expected sequence %d, got %d", i, u.Sequence)
		}
	}
}

func TestPushDropsWhenFull(t *testing.T) {
	q := New(2, Drop, time.Millisecond)

	if !q.Push(wire.Unit{Sequence: 1}) {
		t.Fatal("first push should succeed")
	}
	if !q.Push(wire.Unit{Sequence: 2}) {
		t.Fatal("second push should succeed")
	}
	if q.Push(wire.Unit{Sequence: 3}) {
		t.Error("third push should be dropped when queue is full")
	}
	if q.Len() != 2 {
		t.Errorf("expected length 2, got %d", q.Len())
	}
}

func TestPopTimesOutWhenEmpty(t *testing.T) {
	q := New(2, Drop, time.Millisecond)

	start := time.Now()
	_, ok := q.Pop(20 * time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Error("expected Pop to time out on an empty queue")
	}
	if elapsed < 15*time.Millisecond {
		t.Errorf("expected Pop to wait close to the timeout, took %v", elapsed)
	}
}

func TestPopWakesOnPush(t *testing.T) {
	q := New(2, Drop, time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	var got wire.Unit
	var ok bool
	go func() {
		defer wg.Done()
		got, ok = q.Pop(2 * time.Second)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push(wire.Unit{TaskID: 9, Sequence: 5})
	wg.Wait()

	if !ok {
		t.Fatal("expected Pop to succeed after Push")
	}
	if got.TaskID != 9 {
		t.Errorf("expected TaskID 9, got %d", got.TaskID)
	}
}

func TestPeekTaskIDDoesNotRemove(t *testing.T) {
	q := New(2, Drop, time.Millisecond)
	q.Push(wire.Unit{TaskID: 4})

	id, ok := q.PeekTaskID()
	if !ok || id != 4 {
		t.Fatalf("expected PeekTaskID=4, got %d ok=%v", id, ok)
	}
	if q.Len() != 1 {
		t.Error("PeekTaskID should not remove the unit")
	}
}

func TestPopIfTaskOnlyMatchesHead(t *testing.T) {
	q := New(2, Drop, time.Millisecond)
	q.Push(wire.Unit{TaskID: 1})

	if _, ok := q.PopIfTask(2); ok {
		t.Error("PopIfTask should not match a different task")
	}
	u, ok := q.PopIfTask(1)
	if !ok {
		t.Fatal("PopIfTask should match the head's task")
	}
	if u.TaskID != 1 {
		t.Errorf("expected TaskID 1, got %d", u.TaskID)
	}
}

func TestBlockPolicyEventuallyDropsAfterBoundedWait(t *testing.T) {
	q := New(1, Block, 10*time.Millisecond)
	q.Push(wire.Unit{Sequence: 1})

	start := time.Now()
	ok := q.Push(wire.Unit{Sequence: 2})
	elapsed := time.Since(start)

	if ok {
		t.Error("expected Push to drop after the bounded wait with no consumer")
	}
	if elapsed < 8*time.Millisecond {
		t.Errorf("expected Push to wait close to the bounded wait, took %v", elapsed)
	}
}

func TestBlockPolicySucceedsWhenRoomFreesUp(t *testing.T) {
	q := New(1, Block, 200*time.Millisecond)
	q.Push(wire.Unit{Sequence: 1})

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.PopAny()
	}()

	if !q.Push(wire.Unit{Sequence: 2}) {
		t.Error("expected Push to succeed once the consumer drains a slot")
	}
}

func TestVoidQueueDeliversSynchronously(t *testing.T) {
	var received []wire.Unit
	v := NewVoid(func(u wire.Unit) {
		received = append(received, u)
	})

	if !v.Push(wire.Unit{TaskID: 3}) {
		t.Error("Void.Push should always report success")
	}
	if len(received) != 1 || received[0].TaskID != 3 {
		t.Errorf("expected drain to be called synchronously, got %+v", received)
	}
}
