package peer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elaspv/spvwallet/bytestream"
	"github.com/elaspv/spvwallet/txs"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// wsTxEvent is the JSON shape a remote peer-manager notification feed
// sends over its websocket: a hex-serialized (with-programs) transaction
// plus its confirmation metadata.
type wsTxEvent struct {
	TxHex       string `json:"tx"`
	BlockHeight uint32 `json:"blockHeight"`
	Timestamp   uint32 `json:"timestamp"`
}

// WSChainService is a ChainService backed by a remote peer-manager's
// websocket notification feed (github.com/gorilla/websocket, a teacher
// dependency) for delivery, and a token-bucket limiter
// (golang.org/x/time/rate, also a teacher dependency) bounding how often
// this wallet may call Broadcast, whatever the transaction, to avoid
// hammering a single remote peer.
type WSChainService struct {
	url     string
	conn    *websocket.Conn
	limiter *rate.Limiter
	height  uint32
	peers   map[string]struct{}
}

// NewWSChainService dials url (a ws:// or wss:// endpoint) and returns a
// ChainService that relays its notification stream. broadcastBurst caps
// how many Broadcast calls may fire in quick succession before the
// limiter starts delaying them.
func NewWSChainService(url string, broadcastBurst int) (*WSChainService, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("peer: dial %s: %w", url, err)
	}

	return &WSChainService{
		url:     url,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Every(time.Second), broadcastBurst),
		peers:   make(map[string]struct{}),
	}, nil
}

// BestHeight implements ChainService.
func (s *WSChainService) BestHeight() uint32 {
	return s.height
}

// Subscribe implements ChainService by decoding each websocket text
// frame as a wsTxEvent and forwarding it as a TxEvent, until ctx is
// canceled or the connection closes.
func (s *WSChainService) Subscribe(ctx context.Context) (<-chan TxEvent, error) {
	ch := make(chan TxEvent, 64)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			_, raw, err := s.conn.ReadMessage()
			if err != nil {
				return
			}

			var wsEv wsTxEvent
			if err := json.Unmarshal(raw, &wsEv); err != nil {
				continue
			}

			txBytes, err := hex.DecodeString(wsEv.TxHex)
			if err != nil {
				continue
			}

			tx, err := txs.Deserialize(bytestream.NewReader(txBytes))
			if err != nil {
				continue
			}
			tx.BlockHeight = wsEv.BlockHeight
			tx.Timestamp = wsEv.Timestamp

			if wsEv.BlockHeight > s.height {
				s.height = wsEv.BlockHeight
			}

			select {
			case ch <- TxEvent{Tx: tx, BlockHeight: wsEv.BlockHeight, Timestamp: wsEv.Timestamp}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// Broadcast implements ChainService: it waits for the rate limiter
// before sending tx's with-programs bytes as a JSON text frame.
func (s *WSChainService) Broadcast(tx *txs.Transaction) error {
	if err := s.limiter.Wait(context.Background()); err != nil {
		return err
	}
	msg, err := json.Marshal(wsTxEvent{TxHex: hex.EncodeToString(tx.Bytes())})
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, msg)
}

// Connect implements ChainService. A single websocket connection already
// fans every peer's notifications through one feed, so this records
// addr without opening a new socket.
func (s *WSChainService) Connect(addr string) error {
	s.peers[addr] = struct{}{}
	return nil
}

// Remove implements ChainService.
func (s *WSChainService) Remove(addr string) error {
	delete(s.peers, addr)
	return nil
}

// Close closes the underlying websocket connection.
func (s *WSChainService) Close() error {
	return s.conn.Close()
}

var _ ChainService = (*WSChainService)(nil)
