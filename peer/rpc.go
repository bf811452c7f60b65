package peer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/decred/dcrd/rpcclient/v7"
	"github.com/elaspv/spvwallet/bytestream"
	"github.com/elaspv/spvwallet/txs"
)

// RPCChainService is a ChainService backed by a trusted full node's
// JSON-RPC interface (github.com/decred/dcrd/rpcclient/v7, the teacher's
// own client for exactly this role), for deployments that skip SPV
// filtered-block sync in favor of a directly-trusted backend. It polls
// rather than subscribes to a push feed: rpcclient's websocket
// notification registration is tied to dcrd's own wire.MsgTx/MsgBlock
// types, which this module's Transaction format does not share, so new
// transactions are discovered by diffing mempool contents instead.
type RPCChainService struct {
	client *rpcclient.Client

	pollInterval time.Duration
	seenMempool  map[string]struct{}
}

// NewRPCChainService dials host with the given credentials in HTTP POST
// mode (no websocket notification registration, for the reason
// documented on RPCChainService).
func NewRPCChainService(host, user, pass string, disableTLS bool, pollInterval time.Duration) (*RPCChainService, error) {
	cfg := &rpcclient.ConnConfig{
		Host:         host,
		User:         user,
		Pass:         pass,
		HTTPPostMode: true,
		DisableTLS:   disableTLS,
	}

	client, err := rpcclient.New(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("peer: rpcclient.New: %w", err)
	}

	return &RPCChainService{
		client:       client,
		pollInterval: pollInterval,
		seenMempool:  make(map[string]struct{}),
	}, nil
}

// BestHeight implements ChainService.
func (s *RPCChainService) BestHeight() uint32 {
	height, err := s.client.GetBlockCount()
	if err != nil {
		return 0
	}
	return uint32(height)
}

// Subscribe implements ChainService by polling getrawmempool for new
// transaction hashes and fetching+decoding each one as it appears.
func (s *RPCChainService) Subscribe(ctx context.Context) (<-chan TxEvent, error) {
	ch := make(chan TxEvent, 64)

	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pollMempool(ctx, ch)
			}
		}
	}()

	return ch, nil
}

func (s *RPCChainService) pollMempool(ctx context.Context, ch chan<- TxEvent) {
	raw, err := s.client.RawRequest("getrawmempool", nil)
	if err != nil {
		return
	}

	var hashes []string
	if err := json.Unmarshal(raw, &hashes); err != nil {
		return
	}

	for _, h := range hashes {
		if _, ok := s.seenMempool[h]; ok {
			continue
		}
		s.seenMempool[h] = struct{}{}

		txRaw, err := s.client.RawRequest("getrawtransaction", []json.RawMessage{
			json.RawMessage(fmt.Sprintf("%q", h)),
		})
		if err != nil {
			continue
		}

		var hexStr string
		if err := json.Unmarshal(txRaw, &hexStr); err != nil {
			continue
		}
		txBytes, err := hex.DecodeString(hexStr)
		if err != nil {
			continue
		}
		tx, err := txs.Deserialize(bytestream.NewReader(txBytes))
		if err != nil {
			continue
		}

		select {
		case ch <- TxEvent{Tx: tx}:
		case <-ctx.Done():
			return
		}
	}
}

// Broadcast implements ChainService via the sendrawtransaction RPC.
func (s *RPCChainService) Broadcast(tx *txs.Transaction) error {
	hexStr := hex.EncodeToString(tx.Bytes())
	_, err := s.client.RawRequest("sendrawtransaction", []json.RawMessage{
		json.RawMessage(fmt.Sprintf("%q", hexStr)),
	})
	return err
}

// Connect implements ChainService. RPCChainService speaks to a single
// configured full node, so additional peer addresses are not meaningful;
// Connect is a no-op satisfying the interface.
func (s *RPCChainService) Connect(addr string) error { return nil }

// Remove implements ChainService, mirroring Connect's no-op.
func (s *RPCChainService) Remove(addr string) error { return nil }

// Shutdown releases the underlying RPC client.
func (s *RPCChainService) Shutdown() {
	s.client.Shutdown()
}

var _ ChainService = (*RPCChainService)(nil)
