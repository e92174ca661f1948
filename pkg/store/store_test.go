package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/NERVsystems/osmingest/pkg/geo"
	"github.com/NERVsystems/osmingest/pkg/listing"
)

func sampleHotels() []listing.Record {
	return listing.Records([]listing.Hotel{
		{Base: listing.Base{Name: "Grand Hotel", Location: geo.NewPoint(22.57, 88.36)}, Meta: listing.Meta{OSMID: 1, OSMType: "node"}},
		{Base: listing.Base{Name: "Fairlawn", Location: geo.NewPoint(22.55, 88.35)}, Meta: listing.Meta{OSMID: 2, OSMType: "way"}},
	})
}

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return decoded
}

func TestFileSinkWritesPrettyArray(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	sink := NewFileSink(dir)

	if err := sink.Write(context.Background(), listing.Hotels, sampleHotels()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "hotels.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  {\n    \"name\": \"Grand Hotel\"") {
		t.Errorf("expected two-space indentation, got:\n%s", data)
	}

	decoded := readRecords(t, sink.Path(listing.Hotels))
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[1]["name"] != "Fairlawn" {
		t.Errorf("unexpected second record: %v", decoded[1]["name"])
	}

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only hotels.json in %s, found %d entries", dir, len(entries))
	}
}

func TestFileSinkEmptyInput(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	if err := sink.Write(context.Background(), listing.Events, nil); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(context.Background(), listing.Sports, []listing.Record{}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"events.json", "sports.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "[]\n" {
			t.Errorf("%s: expected empty array, got %q", name, data)
		}
	}
}

func TestFileSinkOverwrites(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)
	ctx := context.Background()

	if err := sink.Write(ctx, listing.Hotels, sampleHotels()); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(ctx, listing.Hotels, sampleHotels()[:1]); err != nil {
		t.Fatal(err)
	}

	if n := len(readRecords(t, sink.Path(listing.Hotels))); n != 1 {
		t.Errorf("expected 1 record after overwrite, got %d", n)
	}
}

func TestFileSinkCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFileSink(dir).Write(ctx, listing.Hotels, sampleHotels())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "hotels.json")); !os.IsNotExist(statErr) {
		t.Errorf("expected no file after cancellation, stat returned %v", statErr)
	}
}

func newMockSink(t *testing.T) (*PostgresSink, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("creating mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	sink := NewPostgresSink(mock, "run-1", nil)
	sink.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return sink, mock
}

func checkExpectations(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet database expectations: %v", err)
	}
}

func TestPostgresSinkReplacesCategory(t *testing.T) {
	sink, mock := newMockSink(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteCategory)).
		WithArgs("hotels").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, listingColumns).
		WillReturnResult(2)
	mock.ExpectCommit()

	if err := sink.Write(context.Background(), listing.Hotels, sampleHotels()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	checkExpectations(t, mock)
}

func TestPostgresSinkEmptyCategoryOnlyDeletes(t *testing.T) {
	sink, mock := newMockSink(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteCategory)).
		WithArgs("events").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	if err := sink.Write(context.Background(), listing.Events, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	checkExpectations(t, mock)
}

func TestPostgresSinkRollsBackOnCopyFailure(t *testing.T) {
	sink, mock := newMockSink(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteCategory)).
		WithArgs("hotels").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, listingColumns).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := sink.Write(context.Background(), listing.Hotels, sampleHotels())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected copy failure, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestPostgresSinkBeginFailure(t *testing.T) {
	sink, mock := newMockSink(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	if err := sink.Write(context.Background(), listing.Hotels, sampleHotels()); err == nil {
		t.Error("expected error when the transaction cannot start")
	}
	checkExpectations(t, mock)
}

func TestPostgresSinkEnsureSchema(t *testing.T) {
	sink, mock := newMockSink(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS listings").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	if err := sink.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	checkExpectations(t, mock)
}

type recordingSink struct {
	name  string
	err   error
	delay time.Duration
	calls int32
}

func (s *recordingSink) Write(ctx context.Context, category listing.Category, records []listing.Record) error {
	atomic.AddInt32(&s.calls, 1)
	time.Sleep(s.delay)
	return s.err
}

func (s *recordingSink) Name() string { return s.name }

func TestFanout(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	f := Fanout{a, b}

	if err := f.Write(context.Background(), listing.Hotels, sampleHotels()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("expected one call each, got a=%d b=%d", a.calls, b.calls)
	}
	if f.Name() != "a+b" {
		t.Errorf("expected name a+b, got %s", f.Name())
	}

	b.err = errors.New("boom")
	err := f.Write(context.Background(), listing.Hotels, sampleHotels())
	if err == nil || err.Error() != "b: boom" {
		t.Errorf("expected \"b: boom\", got %v", err)
	}
	if a.calls != 2 {
		t.Errorf("expected a to be written again, got %d calls", a.calls)
	}
}

func TestFanoutSkipsLastSinkOnFailure(t *testing.T) {
	db := &recordingSink{name: "postgres", err: errors.New("db down"), delay: 20 * time.Millisecond}
	last := &recordingSink{name: "file"}

	err := Fanout{db, last}.Write(context.Background(), listing.Hotels, sampleHotels())
	if err == nil || err.Error() != "postgres: db down" {
		t.Errorf("expected \"postgres: db down\", got %v", err)
	}
	if last.calls != 0 {
		t.Errorf("last sink written %d times after a failure", last.calls)
	}
}

func TestFanoutSlowFailureKeepsFile(t *testing.T) {
	dir := t.TempDir()
	file := NewFileSink(dir)
	previous := []byte("[\"previous run\"]\n")
	if err := os.WriteFile(file.Path(listing.Hotels), previous, 0o644); err != nil {
		t.Fatal(err)
	}

	db := &recordingSink{name: "postgres", err: errors.New("db down"), delay: 20 * time.Millisecond}
	for i := 0; i < 5; i++ {
		if err := (Fanout{db, file}).Write(context.Background(), listing.Hotels, sampleHotels()); err == nil {
			t.Fatal("expected database failure")
		}

		data, err := os.ReadFile(file.Path(listing.Hotels))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, previous) {
			t.Fatalf("iteration %d: file replaced despite failure:\n%s", i, data)
		}
	}
}

func TestFanoutSingleSink(t *testing.T) {
	a := &recordingSink{name: "a"}
	if err := (Fanout{a}).Write(context.Background(), listing.Hotels, nil); err != nil {
		t.Fatal(err)
	}
	if a.calls != 1 {
		t.Errorf("expected one call, got %d", a.calls)
	}
}
