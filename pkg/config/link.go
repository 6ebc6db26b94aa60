package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// LinkConfig configures the outbound connection manager.
// Example YAML:
// link:
//   transport: quic
//   service: 00001101-0000-1000-8000-00805f9b34fb
//   allowed_peers: ["10.0.0.2:7700"]
//   monitor_reads: true
//   reset_on_write_failure: false
type LinkConfig struct {
	// Transport is one of the kinds known to pkg/transports.
	Transport string `mapstructure:"transport"`
	// Service is the service UUID sockets are created for.
	Service string `mapstructure:"service"`
	// AllowedPeers restricts socket creation to these addresses. Empty allows all.
	AllowedPeers []string `mapstructure:"allowed_peers"`
	// MonitorReads watches the active stream for remote hangup.
	MonitorReads bool `mapstructure:"monitor_reads"`
	// ResetOnWriteFailure drops the stream and returns to idle after a failed write.
	ResetOnWriteFailure bool `mapstructure:"reset_on_write_failure"`
}

// ServiceUUID returns the parsed service UUID. validate guarantees it parses.
func (l LinkConfig) ServiceUUID() uuid.UUID {
	id, err := uuid.Parse(l.Service)
	if err != nil {
		return transport.SerialPortService
	}
	return id
}

// PeerConfig names one remote device.
type PeerConfig struct {
	Name string `mapstructure:"name"`
	Addr string `mapstructure:"addr"`
}

// Info converts the entry to the transport representation.
func (p PeerConfig) Info() transport.PeerInfo {
	return transport.PeerInfo{Addr: p.Addr, Name: p.Name}
}

// Peer resolves a name or address against the configured peers. An address
// that matches no entry is returned as an unnamed peer.
func (c *Config) Peer(ref string) (transport.PeerInfo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if len(c.Peers) == 0 {
			return transport.PeerInfo{}, fmt.Errorf("no peer given and none configured")
		}
		return c.Peers[0].Info(), nil
	}
	for _, p := range c.Peers {
		if strings.EqualFold(p.Name, ref) || strings.EqualFold(p.Addr, ref) {
			return p.Info(), nil
		}
	}
	return transport.PeerInfo{Addr: ref}, nil
}
