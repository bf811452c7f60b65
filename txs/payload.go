package txs

import (
	"fmt"
	"sync"

	"github.com/elaspv/spvwallet/bytestream"
)

// Payload is the capability set every transaction payload variant
// implements (spec §4.4, §9 "Polymorphic payload dispatch": a tagged
// variant with a central registry keyed by type).
type Payload interface {
	Serialize(w *bytestream.Writer, payloadVersion byte)
	Deserialize(r *bytestream.Reader, payloadVersion byte) error
	ToJSON() interface{}
}

// payloadFactory constructs a zero-value Payload for a given Type, ready
// to be filled in by Deserialize.
type payloadFactory func() Payload

var (
	registryMu sync.Mutex
	registry   = make(map[Type]payloadFactory)
)

// RegisterPayload registers the zero-value constructor for typ. It
// follows the same register-under-mutex shape as the teacher's
// lnwallet.RegisterWallet/wallets map (lnwallet/interface.go).
func RegisterPayload(typ Type, factory payloadFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[typ]; ok {
		panic(fmt.Sprintf("txs: payload already registered for type %#x", typ))
	}
	registry[typ] = factory
}

// NewPayload constructs the zero-value payload registered for typ, or an
// error if no variant is registered.
func NewPayload(typ Type) (Payload, error) {
	registryMu.Lock()
	factory, ok := registry[typ]
	registryMu.Unlock()

	if !ok {
		return nil, fmt.Errorf("txs: no payload registered for type %#x", typ)
	}
	return factory(), nil
}

func init() {
	RegisterPayload(TypeCoinBase, func() Payload { return &CoinBasePayload{} })
	RegisterPayload(TypeTransferAsset, func() Payload { return &EmptyPayload{} })
	RegisterPayload(TypeRegisterAsset, func() Payload { return &RegisterAssetPayload{} })
	RegisterPayload(TypeRecord, func() Payload { return &EmptyPayload{} })
	RegisterPayload(TypeVote, func() Payload { return &EmptyPayload{} })
	RegisterPayload(TypeTransferCrossChain, func() Payload { return &TransferCrossChainPayload{} })
	RegisterPayload(TypeWithdrawFromSideChain, func() Payload { return &WithdrawFromSideChainPayload{} })
	RegisterPayload(TypeRegisterProducer, func() Payload { return &RegisterProducerPayload{} })
	RegisterPayload(TypeCancelProducer, func() Payload { return &CancelProducerPayload{} })
	RegisterPayload(TypeCRCProposal, func() Payload { return &CRCProposalPayload{} })
}
