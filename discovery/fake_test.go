package discovery_test

import (
	"testing"

	"ndsi/discovery"
)

func TestFakeFabricJoinEmitsEnter(t *testing.T) {
	fabric := discovery.NewFakeFabric()
	factory := fabric.NewPeer()

	a, err := factory("host-a")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	b, err := factory("host-b")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("a.Start: %v", err)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("b.Start: %v", err)
	}

	if err := a.Join("pupil-mobile-v4"); err != nil {
		t.Fatalf("a.Join: %v", err)
	}
	if err := b.Join("pupil-mobile-v4"); err != nil {
		t.Fatalf("b.Join: %v", err)
	}

	if !a.HasEvent() {
		t.Fatal("a should have seen b's ENTER")
	}
	ev, ok := a.PollEvent()
	if !ok || ev.Type != discovery.EventEnter || ev.PeerUUID != b.UUID() {
		t.Fatalf("got %+v, ok=%v", ev, ok)
	}
}

func TestFakeFabricShoutReachesGroupMembersOnly(t *testing.T) {
	fabric := discovery.NewFakeFabric()
	factory := fabric.NewPeer()

	a, _ := factory("a")
	b, _ := factory("b")
	c, _ := factory("c")
	a.Start()
	b.Start()
	c.Start()

	a.Join("g1")
	b.Join("g1")
	c.Join("g2")

	// draining the ENTER event from b's join.
	a.PollEvent()

	if err := b.Shout("g1", []byte("hello")); err != nil {
		t.Fatalf("Shout: %v", err)
	}

	if !a.HasEvent() {
		t.Fatal("a should receive the shout in g1")
	}
	if c.HasEvent() {
		t.Fatal("c should not receive a shout aimed at g1")
	}
}

func TestFakeFabricWhisperUnknownPeer(t *testing.T) {
	fabric := discovery.NewFakeFabric()
	a, _ := fabric.NewPeer()("a")
	a.Start()

	if err := a.Whisper("does-not-exist", []byte("x")); err == nil {
		t.Fatal("expected an error whispering to an unknown peer")
	}
}

func TestFakePeerStopClearsQueuedEvents(t *testing.T) {
	fabric := discovery.NewFakeFabric()
	factory := fabric.NewPeer()
	a, _ := factory("a")
	b, _ := factory("b")
	a.Start()
	b.Start()
	a.Join("g")
	b.Join("g")

	if !a.HasEvent() {
		t.Fatal("expected a pending ENTER event")
	}
	a.Stop()
	if a.HasEvent() {
		t.Fatal("Stop should clear the pending event queue")
	}
}
