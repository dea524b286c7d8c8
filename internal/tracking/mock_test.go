package tracking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/senyabanana/repair-quotes/internal/clock"
	"github.com/senyabanana/repair-quotes/internal/tracking"
	mock_tracking "github.com/senyabanana/repair-quotes/internal/tracking/mocks"

	"go.uber.org/mock/gomock"
)

func TestPersisterErrors(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))
	diskFull := errors.New("disk full")

	t.Run("load failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		p := mock_tracking.NewMockPersister(ctrl)
		p.EXPECT().Load(gomock.Any()).Return(tracking.Snapshot{}, diskFull)

		if _, err := tracking.Open(ctx, p, clk, nil); !errors.Is(err, diskFull) {
			t.Fatalf("expected load error, got %v", err)
		}
	})

	t.Run("save failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		p := mock_tracking.NewMockPersister(ctrl)
		p.EXPECT().Load(gomock.Any()).Return(tracking.Snapshot{}, nil)
		p.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s tracking.Snapshot) error {
			if len(s.Entries) != 1 || s.Entries[0].Status != tracking.StatusSubmitted {
				t.Errorf("unexpected snapshot: %+v", s)
			}
			return diskFull
		})

		store, err := tracking.Open(ctx, p, clk, nil)
		if err != nil {
			t.Fatal(err)
		}
		entry := tracking.Entry{RequestID: "car1", WorkshopID: "ws1"}
		if err := store.MarkSent(ctx, entry); !errors.Is(err, diskFull) {
			t.Fatalf("expected save error, got %v", err)
		}
	})

	t.Run("sending is never persisted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		p := mock_tracking.NewMockPersister(ctrl)
		p.EXPECT().Load(gomock.Any()).Return(tracking.Snapshot{}, nil)
		p.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

		store, err := tracking.Open(ctx, p, clk, nil)
		if err != nil {
			t.Fatal(err)
		}
		store.MarkSending(tracking.Key{RequestID: "car1", WorkshopID: "ws1"})
		if !store.Begin(tracking.Key{RequestID: "car2", WorkshopID: "ws1"}) {
			t.Fatal("expected begin")
		}
	})
}
