// Package peer specifies the wallet engine's collaborator interface onto
// the peer-to-peer synchronization layer (spec §1, §6): an abstract
// ChainService that delivers ordered (tx, blockHeight, timestamp) events
// and accepts outgoing broadcasts.
//
// Shaped after the teacher's lnwallet.BlockChainIO (best-block/UTXO/block
// queries) and lnwallet.TransactionSubscription (confirmed/unconfirmed
// delivery channels plus Cancel()), and its connect/remove vocabulary
// after github.com/decred/dcrd/connmgr's ConnManager — both teacher
// dependencies. The "persistent peers, backoff on failure" goroutine
// shape of FakeChainService.Run is grounded on
// lnwallet/dcrwallet/spvsync.go's SPVSyncer.start (mtx-guarded cancel
// func, backoff on the run loop exiting).
package peer

import (
	"context"
	"sync"
	"time"

	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/txs"
)

// TxEvent is one (tx, blockHeight, timestamp) delivery from the sync
// layer, matching spec §2's data-flow description verbatim.
type TxEvent struct {
	Tx          *txs.Transaction
	BlockHeight uint32
	Timestamp   uint32
}

// ChainService is the collaborator interface the Wallet's owning
// SubWallet depends on for synchronization and broadcast. It is
// intentionally narrow: chain height, ordered transaction-event delivery,
// peer add/remove and broadcast are the only capabilities the Wallet subsystem itself
// requires (spec §1 "Out of scope... peer-to-peer synchronization
// engine").
type ChainService interface {
	// BestHeight returns the chain tip height this service has
	// synchronized to.
	BestHeight() uint32

	// Subscribe returns a channel of TxEvent that closes when ctx is
	// canceled, mirroring
	// TransactionSubscription's confirmed/unconfirmed delivery but
	// collapsed to one ordered channel since the Wallet only needs
	// delivery order preserved, not a confirmed/unconfirmed split.
	Subscribe(ctx context.Context) (<-chan TxEvent, error)

	// Broadcast submits tx to the network.
	Broadcast(tx *txs.Transaction) error

	// Connect adds addr to the persistent peer set, matching
	// connmgr.ConnManager's Connect/Remove vocabulary.
	Connect(addr string) error

	// Remove drops addr from the persistent peer set.
	Remove(addr string) error
}

// FakeChainService is an in-memory ChainService used by tests and by the
// CLI's offline/demo mode: it replays a pre-seeded event list to every
// subscriber and records broadcast transactions instead of sending them
// anywhere.
type FakeChainService struct {
	mu sync.Mutex

	height uint32
	peers  map[string]struct{}

	events     []TxEvent
	broadcasts []*txs.Transaction

	subscribers []chan TxEvent
	cancel      func()
}

// NewFakeChainService returns an empty FakeChainService at height 0.
func NewFakeChainService() *FakeChainService {
	return &FakeChainService{peers: make(map[string]struct{})}
}

// BestHeight implements ChainService.
func (f *FakeChainService) BestHeight() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.height
}

// SetHeight advances the fake chain tip, used by tests to simulate new
// blocks arriving.
func (f *FakeChainService) SetHeight(height uint32) {
	f.mu.Lock()
	f.height = height
	f.mu.Unlock()
}

// Subscribe implements ChainService: it returns a channel that replays
// every event queued so far via Deliver, then blocks until ctx is
// canceled.
func (f *FakeChainService) Subscribe(ctx context.Context) (<-chan TxEvent, error) {
	ch := make(chan TxEvent, 64)

	f.mu.Lock()
	for _, ev := range f.events {
		ch <- ev
	}
	f.subscribers = append(f.subscribers, ch)
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, c := range f.subscribers {
			if c == ch {
				f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

// Deliver pushes ev to every current subscriber and records it for
// future subscribers.
func (f *FakeChainService) Deliver(ev TxEvent) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	subs := append([]chan TxEvent(nil), f.subscribers...)
	f.mu.Unlock()

	for _, ch := range subs {
		ch <- ev
	}
}

// Broadcast implements ChainService by recording tx rather than sending
// it anywhere.
func (f *FakeChainService) Broadcast(tx *txs.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, tx)
	return nil
}

// Broadcasts returns every transaction handed to Broadcast so far.
func (f *FakeChainService) Broadcasts() []*txs.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*txs.Transaction, len(f.broadcasts))
	copy(out, f.broadcasts)
	return out
}

// Connect implements ChainService.
func (f *FakeChainService) Connect(addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.peers[addr] = struct{}{}
	return nil
}

// Remove implements ChainService.
func (f *FakeChainService) Remove(addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.peers, addr)
	return nil
}

// Run starts a background loop that waits out one backoff interval after
// another until ctx is canceled or Stop is called, the same
// mtx-guarded-cancel-func/backoff shape as SPVSyncer.start/stop. The loop
// makes no connection attempts and does not touch the peer set; it gives
// the fake the same start/stop lifecycle real ChainService
// implementations have, without requiring real network I/O.
func (f *FakeChainService) Run(ctx context.Context, backoff time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}()
}

// Stop cancels the Run loop started above, if any.
func (f *FakeChainService) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

var _ ChainService = (*FakeChainService)(nil)

// HashOf is a convenience used by ChainService implementations to key
// merkle-block lookups by transaction hash without importing the txs
// package's internal Hash caching.
func HashOf(tx *txs.Transaction) bigint.Uint256 {
	return tx.Hash()
}
