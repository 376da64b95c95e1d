package clientstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localItem(id string, sellerID uint, title string) dto.ClientItem {
	return dto.ClientItem{
		ID:     id,
		Title:  title,
		Status: "available",
		Seller: dto.SellerInfo{ID: sellerID},
	}
}

func TestStoreMutationsBumpVersion(t *testing.T) {
	s := NewStore()
	assert.Zero(t, s.Version())

	s.Add(localItem("a", 1, "Lamp"))
	s.Update(localItem("a", 1, "Desk Lamp"))
	s.Remove("a")

	assert.EqualValues(t, 3, s.Version())
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestItemsBySeller(t *testing.T) {
	s := NewStore()
	s.Add(localItem("a", 1, "Lamp"))
	s.Add(localItem("b", 1, "Bike"))
	s.Add(localItem("c", 2, "Fridge"))

	mine := s.ItemsBySeller(1)
	assert.Len(t, mine, 2)
	assert.Len(t, s.ItemsBySeller(2), 1)
	assert.Len(t, s.Items(), 3)
}

func TestReconcileSellerLeavesOthersAlone(t *testing.T) {
	s := NewStore()
	s.Add(localItem("a", 1, "Lamp"))
	s.Add(localItem("b", 2, "Fridge"))

	// Server says seller 1 has a different set now.
	s.ReconcileSeller(1, []dto.ClientItem{
		localItem("x", 1, "Bike"),
		localItem("y", 1, "Skateboard"),
	})

	assert.Len(t, s.ItemsBySeller(1), 2)
	_, ok := s.Get("a")
	assert.False(t, ok)

	// Seller 2's item was untouched.
	_, ok = s.Get("b")
	assert.True(t, ok)
	assert.False(t, s.LastSync().IsZero())
}

func TestReplaceUniversityItems(t *testing.T) {
	s := NewStore()
	s.ReplaceUniversityItems([]dto.ItemResponse{{ID: "x", Title: "Bike"}})

	feed := s.UniversityItems()
	require.Len(t, feed, 1)
	assert.Equal(t, "Bike", feed[0].Title)

	s.ReplaceUniversityItems(nil)
	assert.Empty(t, s.UniversityItems())
}

func TestReconcilerFoldsServerState(t *testing.T) {
	s := NewStore()
	s.Add(localItem("a", 1, "Lamp"))

	synced := make(chan struct{}, 1)
	fn := func(ctx context.Context, items []dto.ClientItem) ([]dto.ClientItem, error) {
		out := append([]dto.ClientItem{}, items...)
		out = append(out, localItem("server-1", 1, "Bike"))
		select {
		case synced <- struct{}{}:
		default:
		}
		return out, nil
	}

	r := NewReconciler(s, 1, fn, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	r.Kick()
	select {
	case <-synced:
	case <-time.After(2 * time.Second):
		t.Fatal("sync never ran")
	}

	require.Eventually(t, func() bool {
		_, ok := s.Get("server-1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	assert.Zero(t, r.Desyncs())
}

func TestReconcilerFailureKeepsLocalState(t *testing.T) {
	s := NewStore()
	s.Add(localItem("a", 1, "Lamp"))

	attempted := make(chan struct{}, 1)
	fn := func(ctx context.Context, items []dto.ClientItem) ([]dto.ClientItem, error) {
		select {
		case attempted <- struct{}{}:
		default:
		}
		return nil, errors.New("server unreachable")
	}

	r := NewReconciler(s, 1, fn, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	r.Kick()
	select {
	case <-attempted:
	case <-time.After(2 * time.Second):
		t.Fatal("sync never ran")
	}

	require.Eventually(t, func() bool {
		return r.Desyncs() > 0
	}, 2*time.Second, 10*time.Millisecond)

	// The optimistic write survives the failed push.
	_, ok := s.Get("a")
	assert.True(t, ok)
}
