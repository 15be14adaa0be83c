// Package services orchestrates the ledger store and the pure
// aggregate functions behind the presentation layer.
package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"pocketledger/internal/core"
	"pocketledger/internal/storage"
)

// Snapshot is the published state of one owner's ledger: the rows as
// last fetched plus every derived view recomputed from exactly those
// rows. A snapshot is immutable once published.
type Snapshot struct {
	Owner        string
	Transactions []core.Transaction
	Total        decimal.Decimal
	Histogram    core.MonthlyHistogram
	Axis         core.AxisPlan

	seq uint64 // fetch sequence that produced this snapshot
}

// LedgerService is the view-sync controller. It owns no persistent
// state: every visibility event triggers a full re-read and a full
// re-derivation, so the published views can never drift from the
// stored rows. There is deliberately no incremental aggregate path.
type LedgerService struct {
	store *storage.SQLiteRepository

	mu        sync.RWMutex
	snapshots map[string]Snapshot
	seq       atomic.Uint64

	refreshes singleflight.Group
}

func NewLedgerService(store *storage.SQLiteRepository) *LedgerService {
	return &LedgerService{
		store:     store,
		snapshots: make(map[string]Snapshot),
	}
}

// Login resolves a display name to its user row, creating it on first
// use.
func (s *LedgerService) Login(ctx context.Context, name string) (core.User, error) {
	return s.store.FindOrCreateUser(ctx, name)
}

// Refresh handles a visibility event: re-read the owner's rows and
// recompute total, histogram and axis plan from the fresh result.
// Overlapping refreshes for the same owner collapse into one fetch,
// and a slow fetch never overwrites a snapshot produced by a newer
// one (last completed fetch wins).
func (s *LedgerService) Refresh(ctx context.Context, owner string) (Snapshot, error) {
	v, err, shared := s.refreshes.Do(owner, func() (any, error) {
		seq := s.seq.Add(1)

		txs, err := s.store.ListTransactions(ctx, owner)
		if err != nil {
			return nil, err
		}

		snap := s.derive(owner, txs)
		snap.seq = seq
		s.publish(snap)
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	if shared {
		slog.DebugContext(ctx, "Refresh shared with in-flight fetch", "owner", owner)
	}

	return v.(Snapshot), nil
}

// Delete removes a row by id. On success the held snapshot is edited
// in place of a re-fetch: the row is dropped by id and the derived
// views are recomputed from the edited rows. On failure the snapshot
// is left untouched and the store's error is relayed as-is. Either
// way the next visibility refresh is authoritative.
func (s *LedgerService) Delete(ctx context.Context, owner string, id int64) (bool, error) {
	removed, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.snapshots[owner]
	if !ok {
		return true, nil
	}

	kept := make([]core.Transaction, 0, len(cur.Transactions))
	for _, t := range cur.Transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}

	snap := s.derive(owner, kept)
	snap.seq = cur.seq
	s.snapshots[owner] = snap

	return true, nil
}

// Add validates and persists a new transaction. The held snapshot is
// not touched: the caller navigates back to the ledger screen, whose
// visibility event performs the authoritative refresh.
func (s *LedgerService) Add(ctx context.Context, nt core.NewTransaction) (core.Transaction, error) {
	return s.store.InsertTransaction(ctx, nt)
}

// Snapshot returns the currently published snapshot for owner, or a
// zero-valued one when the owner has never been refreshed.
func (s *LedgerService) Snapshot(owner string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[owner]
}

// Close releases the underlying store.
func (s *LedgerService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *LedgerService) derive(owner string, txs []core.Transaction) Snapshot {
	hist := core.ComputeMonthlyHistogram(txs)
	return Snapshot{
		Owner:        owner,
		Transactions: txs,
		Total:        core.ComputeTotal(txs),
		Histogram:    hist,
		Axis:         core.ComputeAxisPlan(hist),
	}
}

func (s *LedgerService) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.snapshots[snap.Owner]; ok && cur.seq > snap.seq {
		// A newer fetch already landed.
		return
	}
	s.snapshots[snap.Owner] = snap
}
