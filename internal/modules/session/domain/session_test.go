package domain_test

import (
	"testing"
	"time"

	"keyloop/internal/modules/session/domain"
)

func TestAccumulatorCountsOnlyWhilePlaying(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC)
	acc := domain.NewAccumulator("s1", start, time.Second)
	for i := 0; i < 90; i++ {
		acc.Tick(i%3 != 0)
	}
	acc.RecordKeyPress()
	acc.RecordKeyPress()
	acc.RecordSectionCompleted()
	if acc.Elapsed() != 60*time.Second {
		t.Fatalf("expected 60s while playing, got %s", acc.Elapsed())
	}

	session, ok := acc.Flush(start.Add(2 * time.Minute))
	if !ok {
		t.Fatalf("expected a recorded session")
	}
	if session.DurationMinutes != 1 || session.NotesPlayed != 2 || session.SectionsCompleted != 1 {
		t.Fatalf("unexpected session %+v", session)
	}
	if _, ok := acc.Flush(start.Add(3 * time.Minute)); ok {
		t.Fatalf("second flush must be a no-op")
	}
	acc.Tick(true)
	acc.RecordKeyPress()
	if snap := acc.Snapshot(); snap.Elapsed != 60*time.Second || snap.NotesPlayed != 2 {
		t.Fatalf("flushed accumulator must not change, got %+v", snap)
	}
}

func TestAccumulatorWithoutPracticeRecordsNothing(t *testing.T) {
	t.Parallel()
	acc := domain.NewAccumulator("s2", time.Now(), 0)
	acc.Tick(false)
	acc.RecordKeyPress()
	if _, ok := acc.Flush(time.Now()); ok {
		t.Fatalf("zero practice time must not flush")
	}
	if !acc.Flushed() {
		t.Fatalf("accumulator must be closed after flush")
	}
}

func TestPracticeStatsRecordAndStreak(t *testing.T) {
	t.Parallel()
	stats := domain.NewPracticeStats()
	day := func(d int) time.Time { return time.Date(2026, 4, d, 21, 0, 0, 0, time.UTC) }
	stats.Record(domain.Session{DurationMinutes: 10, SectionsCompleted: 2, NotesPlayed: 5}, day(3))
	stats.Record(domain.Session{DurationMinutes: 5.5, SectionsCompleted: 1}, day(4))
	stats.Record(domain.Session{DurationMinutes: 4.5, NotesPlayed: 1}, day(4))
	stats.Record(domain.Session{DurationMinutes: 30}, day(1))

	if got := stats.Daily["2026-04-04"]; got.Minutes != 10 || got.SectionsCompleted != 1 || got.NotesPlayed != 1 {
		t.Fatalf("unexpected day aggregate %+v", got)
	}
	if stats.Total.Minutes != 50 || stats.Total.SessionsCompleted != 4 || stats.Total.SectionsCompleted != 3 {
		t.Fatalf("unexpected totals %+v", stats.Total)
	}
	if !stats.LastSession.Equal(day(1)) {
		t.Fatalf("last session must be the latest record call, got %s", stats.LastSession)
	}
	if got := stats.Streak(day(4)); got != 2 {
		t.Fatalf("expected streak 2 ending on the 4th, got %d", got)
	}
	if got := stats.Streak(day(5)); got != 0 {
		t.Fatalf("no practice today means no streak, got %d", got)
	}
	if dates := stats.Dates(); dates[0] != "2026-04-04" || dates[len(dates)-1] != "2026-04-01" {
		t.Fatalf("dates must be newest first, got %v", dates)
	}
}

func TestFormatMinutes(t *testing.T) {
	t.Parallel()
	cases := map[float64]string{
		0:    "0m",
		42:   "42m",
		65:   "1h 5m",
		120:  "2h 0m",
		59.4: "59m",
	}
	for minutes, want := range cases {
		if got := domain.FormatMinutes(minutes); got != want {
			t.Fatalf("FormatMinutes(%v) = %q, want %q", minutes, got, want)
		}
	}
}
