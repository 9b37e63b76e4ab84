package observe

import (
	"sync"
	"testing"
)

func TestSubscribeDeliversCurrentValue(t *testing.T) {
	v := NewValue("a")
	sub := v.Subscribe(4)
	defer sub.Close()

	if got := <-sub.C(); got != "a" {
		t.Fatalf("first value = %q, want %q", got, "a")
	}

	v.Set("b")
	v.Set("c")
	if got := <-sub.C(); got != "b" {
		t.Fatalf("second value = %q, want %q", got, "b")
	}
	if got := <-sub.C(); got != "c" {
		t.Fatalf("third value = %q, want %q", got, "c")
	}
}

func TestSetEqualValueIsNoop(t *testing.T) {
	v := NewValue(1)
	sub := v.Subscribe(4)
	defer sub.Close()
	<-sub.C()

	if v.Set(1) {
		t.Fatal("Set of equal value reported a change")
	}
	select {
	case got := <-sub.C():
		t.Fatalf("unexpected notification %d", got)
	default:
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	v := NewValue(0)
	sub := v.Subscribe(2)
	defer sub.Close()

	for i := 1; i <= 10; i++ {
		v.Set(i)
	}

	first := <-sub.C()
	second := <-sub.C()
	if first != 9 || second != 10 {
		t.Fatalf("got %d, %d; want 9, 10", first, second)
	}
	if v.Get() != 10 {
		t.Fatalf("Get() = %d, want 10", v.Get())
	}
}

func TestCloseClosesChannel(t *testing.T) {
	v := NewValue(0)
	sub := v.Subscribe(1)
	sub.Close()
	sub.Close()

	<-sub.C() // buffered initial value may still be there
	if _, ok := <-sub.C(); ok {
		t.Fatal("channel still open after Close")
	}

	// Writes after Close must not panic.
	v.Set(5)
}

func TestConcurrentReaders(t *testing.T) {
	v := NewValue(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := v.Subscribe(1)
			defer sub.Close()
			for j := 0; j < 100; j++ {
				_ = v.Get()
			}
		}()
	}
	for i := 1; i <= 100; i++ {
		v.Set(i)
	}
	wg.Wait()
}
