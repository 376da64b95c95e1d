package clientstore

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/campus-agora/market-svc/internal/dto"
)

// SyncFunc pushes the seller's local items to the server and returns
// the authoritative set, which covers items created on other devices.
type SyncFunc func(ctx context.Context, items []dto.ClientItem) ([]dto.ClientItem, error)

// Reconciler periodically pushes local mutations through a SyncFunc and
// folds the server's answer back into the store. A failed sync leaves
// the local state untouched; optimistic writes are never rolled back.
type Reconciler struct {
	store    *Store
	sellerID uint
	sync     SyncFunc
	interval time.Duration

	kick    chan struct{}
	desyncs atomic.Uint64
}

func NewReconciler(store *Store, sellerID uint, fn SyncFunc, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Reconciler{
		store:    store,
		sellerID: sellerID,
		sync:     fn,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
}

// Kick requests an immediate sync pass. Safe to call from mutation
// paths; coalesces when a pass is already queued.
func (r *Reconciler) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Desyncs counts failed sync passes since start.
func (r *Reconciler) Desyncs() uint64 {
	return r.desyncs.Load()
}

// Start runs the reconcile loop until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.kick:
			r.runOnce(ctx)
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	version := r.store.Version()
	local := r.store.ItemsBySeller(r.sellerID)

	serverItems, err := r.sync(ctx, local)
	if err != nil {
		r.desyncs.Add(1)
		log.Printf("item sync for seller %d error: %v", r.sellerID, err)
		return
	}

	// A mutation raced the push; keep local state and retry next pass.
	if r.store.Version() != version {
		r.Kick()
		return
	}

	r.store.ReconcileSeller(r.sellerID, serverItems)
}
