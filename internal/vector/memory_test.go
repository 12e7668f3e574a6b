package vector

import (
	"context"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Memory) {
	t.Helper()
	ctx := context.Background()
	entries := []struct {
		itemID    string
		ownerID   string
		sender    string
		sentAt    time.Time
		embedding []float32
	}{
		{"exact", "owner1", "alice@example.com", base, []float32{1, 0}},
		{"close", "owner1", "alice@example.com", base.Add(-24 * time.Hour), []float32{0.9, 0.435889894354}},
		{"orthogonal", "owner1", "alice@example.com", base, []float32{0, 1}},
		{"other-sender", "owner1", "bob@example.com", base, []float32{1, 0}},
		{"other-owner", "owner2", "alice@example.com", base, []float32{1, 0}},
		{"stale", "owner1", "alice@example.com", base.Add(-90 * 24 * time.Hour), []float32{1, 0}},
	}
	for _, e := range entries {
		if err := s.Upsert(ctx, e.itemID, e.ownerID, e.sender, e.sentAt, e.embedding); err != nil {
			t.Fatalf("upsert %s: %v", e.itemID, err)
		}
	}
}

func TestQueryOrdersBySimilarity(t *testing.T) {
	s := NewMemory()
	seed(t, s)

	matches, err := s.Query(context.Background(), []float32{1, 0}, Filter{
		OwnerID: "owner1",
		Sender:  "alice@example.com",
	}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if len(matches) != 4 {
		t.Fatalf("matches = %d, want 4", len(matches))
	}
	if matches[0].Score < matches[1].Score || matches[1].Score < matches[2].Score {
		t.Error("matches not sorted by descending similarity")
	}
	if matches[len(matches)-1].ItemID != "orthogonal" {
		t.Errorf("last match = %s, want orthogonal", matches[len(matches)-1].ItemID)
	}
}

func TestQueryFilters(t *testing.T) {
	s := NewMemory()
	seed(t, s)
	ctx := context.Background()

	t.Run("since excludes stale", func(t *testing.T) {
		matches, err := s.Query(ctx, []float32{1, 0}, Filter{
			OwnerID: "owner1",
			Sender:  "alice@example.com",
			Since:   base.Add(-30 * 24 * time.Hour),
		}, 10)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		for _, m := range matches {
			if m.ItemID == "stale" {
				t.Error("stale entry should be outside the window")
			}
		}
	})

	t.Run("zero filter matches everything", func(t *testing.T) {
		matches, err := s.Query(ctx, []float32{1, 0}, Filter{}, 10)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(matches) != 6 {
			t.Errorf("matches = %d, want 6", len(matches))
		}
	})
}

func TestQueryLimitsToK(t *testing.T) {
	s := NewMemory()
	seed(t, s)

	matches, err := s.Query(context.Background(), []float32{1, 0}, Filter{}, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("matches = %d, want 2", len(matches))
	}
}

func TestUpsertReplaces(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Upsert(ctx, "item1", "owner1", "alice@example.com", base, []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(ctx, "item1", "owner1", "alice@example.com", base, []float32{0, 1}); err != nil {
		t.Fatal(err)
	}

	matches, err := s.Query(ctx, []float32{0, 1}, Filter{}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Score < 0.999 {
		t.Errorf("replaced embedding not used, score = %g", matches[0].Score)
	}
}
