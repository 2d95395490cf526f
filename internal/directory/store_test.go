package directory

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestUpsertCreatesLoggedInRecord(t *testing.T) {
	s := NewStore()

	rec := s.UpsertLoggedIn("alice", "regular")
	if !rec.LoggedIn || rec.Role != "regular" || rec.Loginname != "alice" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, ok := s.Get("alice")
	if !ok || !got.LoggedIn {
		t.Fatalf("expected logged-in record, got %+v ok=%v", got, ok)
	}
}

func TestUpsertPreservesExistingRole(t *testing.T) {
	s := NewStore()

	s.UpsertLoggedIn("alice", "admin")
	s.SetLoggedOut("alice")

	rec := s.UpsertLoggedIn("alice", "regular")
	if rec.Role != "admin" {
		t.Fatalf("role must never change after creation, got %q", rec.Role)
	}
	if !rec.LoggedIn {
		t.Fatal("re-login must set the logged-in flag")
	}
}

func TestSetLoggedOutIdempotent(t *testing.T) {
	s := NewStore()
	s.UpsertLoggedIn("alice", "regular")

	s.SetLoggedOut("alice")
	first, _ := s.Get("alice")

	s.SetLoggedOut("alice")
	second, _ := s.Get("alice")

	if first != second {
		t.Fatalf("second logout changed the record: %+v vs %+v", first, second)
	}
	if second.LoggedIn {
		t.Fatal("record should be logged out")
	}
}

func TestSetLoggedOutUnknownNameIsNoOp(t *testing.T) {
	s := NewStore()
	s.SetLoggedOut("ghost")

	if s.Len() != 0 {
		t.Fatalf("no-op logout must not create entries, len=%d", s.Len())
	}
}

func TestEntriesAreNeverRemoved(t *testing.T) {
	s := NewStore()
	s.UpsertLoggedIn("alice", "regular")
	s.SetLoggedOut("alice")

	if _, ok := s.Get("alice"); !ok {
		t.Fatal("logout must not remove the entry")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
}

func TestListOrderIsStableAndSorted(t *testing.T) {
	s := NewStore()
	for _, name := range []string{"mallory", "alice", "bob"} {
		s.UpsertLoggedIn(name, "regular")
	}

	var names []string
	for _, rec := range s.List() {
		names = append(names, rec.Loginname)
	}

	want := []string{"alice", "bob", "mallory"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}

	// positional lookup observes the same order
	for i, name := range want {
		rec, ok := s.At(i)
		if !ok || rec.Loginname != name {
			t.Fatalf("At(%d): expected %q, got %+v ok=%v", i, name, rec, ok)
		}
	}
}

func TestAtOutOfRange(t *testing.T) {
	s := NewStore()
	s.UpsertLoggedIn("alice", "regular")

	if _, ok := s.At(-1); ok {
		t.Fatal("negative index must not resolve")
	}
	if _, ok := s.At(1); ok {
		t.Fatal("index past the end must not resolve")
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	s := NewStore()

	const goroutines = 16
	const perG = 500

	var wg sync.WaitGroup
	wg.Add(goroutines * 3)
	for i := 0; i < goroutines; i++ {
		name := fmt.Sprintf("user-%d", i)
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				s.UpsertLoggedIn(name, "regular")
				s.SetLoggedOut(name)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				_, _ = s.Get(name)
				_ = s.Len()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				_ = s.List()
			}
		}()
	}
	wg.Wait()

	if s.Len() != goroutines {
		t.Fatalf("expected %d entries, got %d", goroutines, s.Len())
	}
}
