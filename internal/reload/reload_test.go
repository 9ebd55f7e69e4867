package reload

import (
	"sync"
	"testing"
)

func TestFlag_SetClearIsSet(t *testing.T) {
	var f Flag
	if f.IsSet() {
		t.Fatal("new Flag should be clear")
	}
	f.Set()
	if !f.IsSet() {
		t.Fatal("expected flag to be set")
	}
	f.Clear()
	if f.IsSet() {
		t.Fatal("expected flag to be clear after Clear")
	}
}

func TestFlag_ConcurrentAccess(t *testing.T) {
	var f Flag
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); f.Set() }()
		go func() { defer wg.Done(); f.IsSet() }()
	}
	wg.Wait()
}

func TestPasswordGate_CheckMatchesPublished(t *testing.T) {
	var g PasswordGate
	g.Publish("s3cr3t")

	if !g.Check("s3cr3t") {
		t.Fatal("expected matching secret to pass")
	}
	if g.Check("wrong") {
		t.Fatal("expected non-matching secret to fail")
	}
}

func TestPasswordGate_EmptyPublishedNeverMatches(t *testing.T) {
	var g PasswordGate
	g.Publish("")

	if g.Check("") {
		t.Fatal("empty published password must not match an empty secret")
	}
}
