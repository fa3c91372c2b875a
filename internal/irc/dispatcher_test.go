package irc

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestDispatcherOrderAndIsolation(t *testing.T) {
	var errMu sync.Mutex
	var errs []error
	d := NewDispatcher(zerolog.Nop(), func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	})
	go d.Run()

	rec := &recorder{}
	d.AddListener(ListenerFunc(func(ev *Event) error {
		rec.record("first:" + ev.Text)
		if ev.Text == "2" {
			return errors.New("boom")
		}
		if ev.Text == "3" {
			panic("kaboom")
		}
		return nil
	}), EventPrivmsg)
	d.AddListener(ListenerFunc(func(ev *Event) error {
		rec.record("second:" + ev.Text)
		return nil
	}))

	for _, text := range []string{"1", "2", "3"} {
		d.FireEvent(&Event{Kind: EventPrivmsg, Text: text})
	}
	d.FireEvent(&Event{Kind: EventNotice, Text: "4"})
	d.Stop()

	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not drain")
	}

	want := []string{"first:1", "second:1", "first:2", "second:2", "first:3", "second:3", "second:4"}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	errMu.Lock()
	defer errMu.Unlock()
	if len(errs) != 2 {
		t.Fatalf("Expected 2 listener errors, got %v", errs)
	}
	var lerr *ListenerError
	if !errors.As(errs[0], &lerr) || lerr.Kind != EventPrivmsg {
		t.Errorf("Expected ListenerError for privmsg, got %v", errs[0])
	}
}

func TestDispatcherStopRejectsListeners(t *testing.T) {
	d := NewDispatcher(zerolog.Nop(), nil)
	go d.Run()
	d.Stop()
	<-d.Done()

	if err := d.AddListener(ListenerFunc(func(*Event) error { return nil })); !errors.Is(err, ErrDispatcherStopped) {
		t.Errorf("Expected ErrDispatcherStopped, got %v", err)
	}
	if d.FireEvent(&Event{Kind: EventRaw}) {
		t.Error("FireEvent should fail after stop")
	}
}

func TestDispatcherSlowListenerDoesNotBlockFire(t *testing.T) {
	d := NewDispatcher(zerolog.Nop(), nil)
	release := make(chan struct{})
	d.AddListener(ListenerFunc(func(*Event) error {
		<-release
		return nil
	}))
	go d.Run()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			d.FireEvent(&Event{Kind: EventRaw})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("FireEvent blocked behind a slow listener")
	}
	close(release)
	d.Stop()
	<-d.Done()
}
