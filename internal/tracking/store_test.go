package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/repair-quotes/internal/clock"
	"github.com/senyabanana/repair-quotes/internal/models"
)

var (
	start = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	car1  = Key{RequestID: "car1", WorkshopID: "ws1"}
)

func newStore() (*Store, *clock.Fixed) {
	clk := clock.NewFixed(start)
	return New(clk, nil), clk
}

func sent(key Key) Entry {
	return Entry{RequestID: key.RequestID, WorkshopID: key.WorkshopID, WorkshopName: "North Garage"}
}

func TestReopenAfterTerminal(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore()

	s.MarkSending(car1)
	if err := s.MarkSent(ctx, sent(car1)); err != nil {
		t.Fatal(err)
	}
	if !s.HasQuoteSent("car1", "ws1") {
		t.Fatal("expected quote to be active after MarkSent")
	}

	clk.Advance(time.Hour)
	if err := s.UpdateStatus(ctx, car1, StatusAccepted, nil); err != nil {
		t.Fatal(err)
	}
	if s.HasQuoteSent("car1", "ws1") {
		t.Fatal("accepted quote must not block a new send")
	}

	clk.Advance(time.Hour)
	if !s.Begin(car1) {
		t.Fatal("Begin must succeed for a terminal entry")
	}
	renewed := sent(car1)
	renewed.BidID = "bid-2"
	if err := s.MarkSent(ctx, renewed); err != nil {
		t.Fatal(err)
	}

	got := s.Entry("car1", "ws1")
	if got.Status != StatusSubmitted || got.BidID != "bid-2" || !got.CreatedAt.Equal(clk.Now()) {
		t.Fatalf("expected replaced entry, got %+v", got)
	}
	if s.IsSending("car1", "ws1") {
		t.Fatal("key must leave the sending set")
	}
}

func TestHasQuoteSentOnlyForActiveStatuses(t *testing.T) {
	cases := []struct {
		status Status
		active bool
	}{
		{StatusSubmitted, true},
		{StatusViewed, true},
		{StatusQuoted, true},
		{StatusAccepted, false},
		{StatusRejected, false},
		{StatusExpired, false},
		{StatusFailed, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			s, _ := newStore()
			e := sent(car1)
			e.Status = tc.status
			if err := s.SyncFromServer(context.Background(), []Entry{e}); err != nil {
				t.Fatal(err)
			}
			if s.HasQuoteSent("car1", "ws1") != tc.active || s.IsQuoteActive("car1", "ws1") != tc.active {
				t.Fatalf("status %s: expected active=%v", tc.status, tc.active)
			}
		})
	}

	t.Run("missing entry", func(t *testing.T) {
		s, _ := newStore()
		if s.HasQuoteSent("car1", "ws1") {
			t.Fatal("missing entry must not be active")
		}
	})
}

func TestStateMachineLaw(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	if st := s.State("car1", "ws1"); st.Phase != PhaseIdle || st.Entry != nil {
		t.Fatalf("expected idle, got %+v", st)
	}

	s.MarkSending(car1)
	s.MarkSending(car1)
	if st := s.State("car1", "ws1"); st.Phase != PhaseSending {
		t.Fatalf("expected sending, got %v", st.Phase)
	}

	if err := s.UpdateStatus(ctx, car1, StatusAccepted, nil); err != nil {
		t.Fatal(err)
	}
	if s.Entry("car1", "ws1") != nil {
		t.Fatal("UpdateStatus must not create an entry")
	}

	server := sent(car1)
	server.Status = StatusAccepted
	if err := s.SyncFromServer(ctx, []Entry{server}); err != nil {
		t.Fatal(err)
	}
	if s.Entry("car1", "ws1") != nil {
		t.Fatal("sync must not resolve a key that is still sending")
	}

	for _, status := range []Status{StatusSubmitted, StatusFailed} {
		if err := s.UpdateStatus(ctx, car1, status, nil); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("UpdateStatus(%s): expected invalid state, got %v", status, err)
		}
	}
	if err := s.UpdateStatus(ctx, car1, "lost", nil); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	if err := s.MarkFailed(ctx, car1); err != nil {
		t.Fatal(err)
	}
	if st := s.State("car1", "ws1"); st.Phase != PhaseIdle || st.Entry != nil {
		t.Fatalf("failure without entry must write nothing, got %+v", st)
	}

	s.MarkSending(car1)
	if err := s.MarkSent(ctx, sent(car1)); err != nil {
		t.Fatal(err)
	}
	st := s.State("car1", "ws1")
	if st.Phase != PhaseSent || st.Entry.Status != StatusSubmitted || st.Entry.RetryCount != 0 {
		t.Fatalf("expected sent, got %+v", st)
	}

	if !s.Begin(Key{RequestID: "car1", WorkshopID: "ws2"}) {
		t.Fatal("independent key must begin")
	}
	if err := s.UpdateStatus(ctx, car1, StatusQuoted, map[string]string{"price": "300"}); err != nil {
		t.Fatal(err)
	}
	if s.Begin(car1) {
		t.Fatal("Begin must refuse an active entry")
	}
	s.MarkSending(car1)
	if err := s.MarkFailed(ctx, car1); err != nil {
		t.Fatal(err)
	}
	st = s.State("car1", "ws1")
	if st.Phase != PhaseFailed || st.Entry.RetryCount != 1 || st.Entry.Metadata["price"] != "300" {
		t.Fatalf("expected failed entry kept for retry, got %+v", st)
	}
}

func TestEmptyIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	s.MarkSending(Key{RequestID: "car1"})
	if s.Begin(Key{WorkshopID: "ws1"}) {
		t.Fatal("Begin must refuse an incomplete key")
	}
	if err := s.MarkSent(ctx, Entry{WorkshopID: "ws1"}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := s.MarkFailed(ctx, Key{}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateStatus(ctx, Key{}, StatusAccepted, nil); err != nil {
		t.Fatal(err)
	}

	if s.HasQuoteSent("", "ws1") || s.IsQuoteActive("car1", "") || s.IsSending("car1", "") {
		t.Fatal("queries with empty ids must be false")
	}
	if s.Entry("", "") != nil {
		t.Fatal("Entry with empty ids must be nil")
	}
	if st := s.State("", "ws1"); st.Phase != PhaseIdle {
		t.Fatalf("expected idle, got %v", st.Phase)
	}
	if len(s.Entries()) != 0 {
		t.Fatal("nothing must be stored")
	}
}

func TestBeginAllowsOneConcurrentSend(t *testing.T) {
	s, _ := newStore()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		begun int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Begin(car1) {
				mu.Lock()
				begun++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if begun != 1 {
		t.Fatalf("expected exactly one send to begin, got %d", begun)
	}
}

func TestReconcile(t *testing.T) {
	older := start
	newer := start.Add(time.Minute)

	cases := []struct {
		name       string
		local      *Entry
		server     Entry
		wantStatus Status
	}{
		{
			name:       "no local entry",
			server:     Entry{RequestID: "r", WorkshopID: "w", Status: StatusViewed, UpdatedAt: older},
			wantStatus: StatusViewed,
		},
		{
			name:       "server is newer",
			local:      &Entry{RequestID: "r", WorkshopID: "w", Status: StatusSubmitted, UpdatedAt: older},
			server:     Entry{RequestID: "r", WorkshopID: "w", Status: StatusAccepted, UpdatedAt: newer},
			wantStatus: StatusAccepted,
		},
		{
			name:       "same moment",
			local:      &Entry{RequestID: "r", WorkshopID: "w", Status: StatusSubmitted, UpdatedAt: newer},
			server:     Entry{RequestID: "r", WorkshopID: "w", Status: StatusQuoted, UpdatedAt: newer},
			wantStatus: StatusQuoted,
		},
		{
			name:       "local optimistic write is newer",
			local:      &Entry{RequestID: "r", WorkshopID: "w", Status: StatusViewed, UpdatedAt: newer},
			server:     Entry{RequestID: "r", WorkshopID: "w", Status: StatusSubmitted, UpdatedAt: older},
			wantStatus: StatusViewed,
		},
		{
			name:       "server terminal beats newer local",
			local:      &Entry{RequestID: "r", WorkshopID: "w", Status: StatusSubmitted, UpdatedAt: newer},
			server:     Entry{RequestID: "r", WorkshopID: "w", Status: StatusExpired, UpdatedAt: older},
			wantStatus: StatusExpired,
		},
		{
			name:       "server accepted beats newer local quoted",
			local:      &Entry{RequestID: "r", WorkshopID: "w", Status: StatusQuoted, UpdatedAt: newer},
			server:     Entry{RequestID: "r", WorkshopID: "w", Status: StatusAccepted, UpdatedAt: older},
			wantStatus: StatusAccepted,
		},
		{
			name:       "server without timestamp",
			local:      &Entry{RequestID: "r", WorkshopID: "w", Status: StatusSubmitted, UpdatedAt: newer},
			server:     Entry{RequestID: "r", WorkshopID: "w", Status: StatusRejected},
			wantStatus: StatusRejected,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reconcile(tc.local, tc.server)
			if got.Status != tc.wantStatus {
				t.Fatalf("expected %s, got %s", tc.wantStatus, got.Status)
			}
		})
	}

	t.Run("local fields survive", func(t *testing.T) {
		local := &Entry{RequestID: "r", WorkshopID: "w", WorkshopName: "North", RetryCount: 2, Metadata: map[string]string{"note": "call first"}, UpdatedAt: older}
		server := Entry{RequestID: "r", WorkshopID: "w", Status: StatusQuoted, UpdatedAt: newer, Metadata: map[string]string{"price": "300"}}

		got := Reconcile(local, server)
		if got.WorkshopName != "North" || got.RetryCount != 2 || got.Metadata["note"] != "call first" || got.Metadata["price"] != "300" {
			t.Fatalf("unexpected merge: %+v", got)
		}
		got.Metadata["note"] = "changed"
		if local.Metadata["note"] != "call first" {
			t.Fatal("Reconcile must not alias local metadata")
		}
	})
}

func TestSyncFromServer(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore()
	if err := s.MarkSent(ctx, sent(car1)); err != nil {
		t.Fatal(err)
	}
	other := Key{RequestID: "car2", WorkshopID: "ws1"}

	server := []Entry{
		FromServer(models.TrackedQuote{RequestID: "car1", WorkshopID: "ws1", BidID: "bid-1", Status: "rejected", UpdatedAt: clk.Now().Add(time.Minute)}),
		FromServer(models.TrackedQuote{RequestID: "car2", WorkshopID: "ws1", WorkshopName: "North Garage", Status: "quoted", UpdatedAt: clk.Now()}),
		{RequestID: "", WorkshopID: "ws1", Status: StatusQuoted},
		{RequestID: "car3", WorkshopID: "ws1", Status: "unknown"},
	}
	if err := s.SyncFromServer(ctx, server); err != nil {
		t.Fatal(err)
	}

	entries := s.Entries()
	if len(entries) != 2 || entries[0].Key() != car1 || entries[1].Key() != other {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].Status != StatusRejected || entries[0].BidID != "bid-1" || entries[0].LinkedRequestID != "car1" || entries[0].WorkshopName != "North Garage" {
		t.Fatalf("unexpected reconciled entry: %+v", entries[0])
	}
	if !s.IsQuoteActive("car2", "ws1") {
		t.Fatal("server quoted entry must be active")
	}

	if err := s.SetSelection(ctx, Selection{RequestID: "car2", VehicleID: "v-1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Entries()) != 0 || s.Selection() != (Selection{}) {
		t.Fatal("ClearAll must reset entries and selection")
	}
}

func TestSyncTerminalStatusUnblocksSend(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore()
	if err := s.MarkSent(ctx, sent(car1)); err != nil {
		t.Fatal(err)
	}
	clk.Set(time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC))
	if err := s.UpdateStatus(ctx, car1, StatusViewed, nil); err != nil {
		t.Fatal(err)
	}

	rejected := Entry{
		RequestID:  "car1",
		WorkshopID: "ws1",
		Status:     StatusRejected,
		UpdatedAt:  time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC),
	}
	if err := s.SyncFromServer(ctx, []Entry{rejected}); err != nil {
		t.Fatal(err)
	}

	if got := s.Entry("car1", "ws1"); got == nil || got.Status != StatusRejected {
		t.Fatalf("expected server rejection to win, got %+v", got)
	}
	if s.HasQuoteSent("car1", "ws1") {
		t.Fatal("rejected quote must not block a new send")
	}
	if !s.Begin(car1) {
		t.Fatal("Begin must succeed after the server closed the quote")
	}
}

func TestTrack(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore()
	errSend := errors.New("network down")

	calls := 0
	send := func(context.Context) error {
		calls++
		return nil
	}
	if err := s.Track(ctx, sent(car1), send); err != nil {
		t.Fatal(err)
	}
	if calls != 1 || !s.HasQuoteSent("car1", "ws1") || s.IsSending("car1", "ws1") {
		t.Fatalf("expected confirmed send, calls=%d state=%+v", calls, s.State("car1", "ws1"))
	}

	err := s.Track(ctx, sent(car1), send)
	if !errors.Is(err, models.ErrConflict) || calls != 1 {
		t.Fatalf("active quote must refuse a resend without calling send, got %v calls=%d", err, calls)
	}

	clk.Advance(time.Hour)
	if err := s.UpdateStatus(ctx, car1, StatusExpired, nil); err != nil {
		t.Fatal(err)
	}
	err = s.Track(ctx, sent(car1), func(context.Context) error { return errSend })
	if !errors.Is(err, errSend) {
		t.Fatalf("expected send error, got %v", err)
	}
	got := s.Entry("car1", "ws1")
	if got.Status != StatusFailed || got.RetryCount != 1 || s.IsSending("car1", "ws1") {
		t.Fatalf("expected rolled back entry, got %+v", got)
	}

	fresh := Key{RequestID: "car5", WorkshopID: "ws2"}
	if err := s.Track(ctx, sent(fresh), func(context.Context) error { return errSend }); !errors.Is(err, errSend) {
		t.Fatalf("expected send error, got %v", err)
	}
	if s.Entry("car5", "ws2") != nil || s.IsSending("car5", "ws2") {
		t.Fatal("failed first send must leave no entry behind")
	}

	if err := s.Track(ctx, Entry{WorkshopID: "ws1"}, send); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
