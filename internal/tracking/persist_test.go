package tracking

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/senyabanana/repair-quotes/internal/clock"
)

func TestPersistersSurviveReopen(t *testing.T) {
	cases := []struct {
		name string
		open func(t *testing.T, dir string) (Persister, func())
	}{
		{
			name: "sqlite",
			open: func(t *testing.T, dir string) (Persister, func()) {
				p, err := OpenSQLite(filepath.Join(dir, "tracking.db"))
				if err != nil {
					t.Fatal(err)
				}
				return p, func() { p.Close() }
			},
		},
		{
			name: "cbor file",
			open: func(t *testing.T, dir string) (Persister, func()) {
				return NewFilePersister(filepath.Join(dir, "state", "tracking.cbor")), func() {}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			clk := clock.NewFixed(start)
			logger := log.New(io.Discard, "", 0)

			p, closeFn := tc.open(t, dir)
			s, err := Open(ctx, p, clk, logger)
			if err != nil {
				t.Fatal(err)
			}
			first := sent(car1)
			first.BidID = "bid-1"
			if err := s.MarkSent(ctx, first); err != nil {
				t.Fatal(err)
			}
			clk.Advance(time.Minute)
			if err := s.UpdateStatus(ctx, car1, StatusViewed, map[string]string{"seen": "yes"}); err != nil {
				t.Fatal(err)
			}
			pending := Key{RequestID: "car9", WorkshopID: "ws1"}
			s.MarkSending(pending)
			if err := s.SetSelection(ctx, Selection{RequestID: "car1", VehicleID: "v-7"}); err != nil {
				t.Fatal(err)
			}
			closeFn()

			p, closeFn = tc.open(t, dir)
			defer closeFn()
			reopened, err := Open(ctx, p, clk, logger)
			if err != nil {
				t.Fatal(err)
			}

			got := reopened.Entry("car1", "ws1")
			if got == nil {
				t.Fatal("entry lost after reopen")
			}
			if got.Status != StatusViewed || got.WorkshopName != "North Garage" || got.BidID != "bid-1" || got.Metadata["seen"] != "yes" {
				t.Fatalf("unexpected entry after reopen: %+v", got)
			}
			if !got.CreatedAt.Equal(start) || !got.UpdatedAt.Equal(start.Add(time.Minute)) {
				t.Fatalf("timestamps not restored: %v %v", got.CreatedAt, got.UpdatedAt)
			}
			if reopened.IsSending("car9", "ws1") {
				t.Fatal("sending set must be empty after reopen")
			}
			if sel := reopened.Selection(); sel.RequestID != "car1" || sel.VehicleID != "v-7" {
				t.Fatalf("selection not restored: %+v", sel)
			}
		})
	}
}

func TestFilePersisterMissingFile(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "absent.cbor"))
	snapshot, err := p.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot.Entries) != 0 || snapshot.Selection != (Selection{}) {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestFilePersisterCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cbor")
	if err := os.WriteFile(path, []byte{0xff, 0x00, 0x13}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFilePersister(path).Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
