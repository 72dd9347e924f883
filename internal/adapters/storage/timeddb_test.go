package storage

import (
	"context"
	"testing"
	"time"

	"sgc/internal/adapters/http/perf"
)

// TestTimedDB_RecordsQueries verifies every call lands in the collector with a label.
func TestTimedDB_RecordsQueries(t *testing.T) {
	db := migratedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, time.Hour)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO member (id, name, department, role, email, mobile, academic_year) VALUES ('m1', 'A', '', 'Member', 'a@x', '', 'I')"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var n int
	if err := tdb.QueryRowContext(ctx, "SELECT COUNT(*) FROM member").Scan(&n); err != nil || n != 1 {
		t.Fatalf("QueryRowContext: n=%d err=%v", n, err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id FROM member")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()

	if collector.Total() != 3 {
		t.Errorf("Total = %d, want 3", collector.Total())
	}
	sum := collector.Summary(time.Now().Add(-time.Minute), 10)
	if sum.Queries != 3 || sum.SlowQueries != 0 {
		t.Errorf("summary = %+v", sum)
	}
	labels := map[string]bool{}
	for _, s := range sum.SlowestQueries {
		labels[s.Label] = true
	}
	if !labels["INSERT member"] || !labels["SELECT member"] {
		t.Errorf("labels = %v", labels)
	}
}

func TestTimedDB_NilCollector(t *testing.T) {
	tdb := NewTimedDB(migratedTestDB(t), nil, 0)
	if _, err := tdb.ExecContext(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
}

func TestQueryLabel(t *testing.T) {
	tests := map[string]string{
		"SELECT id FROM member WHERE email = ?":                          "SELECT member",
		"select count(*) from attendance where date = ?":                 "SELECT attendance",
		"INSERT INTO attendance (member_id, date) VALUES (?, ?)":         "INSERT attendance",
		"INSERT INTO feedback(id) VALUES (?)":                            "INSERT feedback",
		"UPDATE outbox SET status = ?":                                   "UPDATE outbox",
		"DELETE FROM member WHERE id IN (?, ?)":                          "DELETE member",
		"  \n  PRAGMA foreign_keys = ON":                                 "PRAGMA",
		"":                                                               "EMPTY",
		"SELECT m.id FROM \"member\" m JOIN attendance a ON a.member_id": "SELECT member",
	}
	for query, want := range tests {
		if got := QueryLabel(query); got != want {
			t.Errorf("QueryLabel(%q) = %q, want %q", query, got, want)
		}
	}
}
