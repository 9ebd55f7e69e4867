package history

import (
	"testing"

	"github.com/greywire/proxypool/internal/pool"
	"github.com/greywire/proxypool/internal/validator"
)

func TestOpen_CreatesRoundsTable(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, pool.New())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='rounds'`).Scan(&name)
	if err != nil {
		t.Fatalf("rounds table missing: %v", err)
	}
}

func TestRecordRound_InsertsRow(t *testing.T) {
	dir := t.TempDir()
	p := pool.New()
	s, err := Open(dir, p)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	s.RecordRound(validator.Summary{Promotions: 2, Demotions: 1, Evictions: 0})

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM rounds`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d rows, want 1", count)
	}

	var promotions, demotions, evictions int
	err = s.db.QueryRow(`SELECT promotions, demotions, evictions FROM rounds LIMIT 1`).
		Scan(&promotions, &demotions, &evictions)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if promotions != 2 || demotions != 1 || evictions != 0 {
		t.Fatalf("got (%d,%d,%d), want (2,1,0)", promotions, demotions, evictions)
	}
}

func TestRecordRound_NilStoreIsNoop(t *testing.T) {
	var s *Store
	s.RecordRound(validator.Summary{Promotions: 1})
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	p := pool.New()
	s1, err := Open(dir, p)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	s1.RecordRound(validator.Summary{Promotions: 1})
	s1.Close()

	s2, err := Open(dir, p)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.QueryRow(`SELECT COUNT(*) FROM rounds`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d rows after reopen, want 1 (migration must not duplicate/reset data)", count)
	}
}
