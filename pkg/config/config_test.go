package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "spplink.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tcp", cfg.Link.Transport)
	assert.Equal(t, transport.SerialPortService, cfg.Link.ServiceUUID())
	assert.True(t, cfg.Link.MonitorReads)
	assert.False(t, cfg.Link.ResetOnWriteFailure)
	assert.Equal(t, "text", cfg.Command.Format)
}

func TestLoadFile(t *testing.T) {
	p := writeConfig(t, `
app_name: desk
log:
  level: debug
link:
  transport: QUIC
  allowed_peers: ["10.0.0.2:7700"]
  reset_on_write_failure: true
peers:
  - name: Phone
    addr: 10.0.0.2:7700
  - addr: 10.0.0.3:7700
command:
  format: cbor
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "desk", cfg.AppName)
	assert.Equal(t, "quic", cfg.Link.Transport)
	assert.Equal(t, []string{"10.0.0.2:7700"}, cfg.Link.AllowedPeers)
	assert.True(t, cfg.Link.ResetOnWriteFailure)
	require.Len(t, cfg.Peers, 2)
	assert.Equal(t, "cbor", cfg.Command.Format)

	peer, err := cfg.Peer("phone")
	require.NoError(t, err)
	assert.Equal(t, transport.PeerInfo{Addr: "10.0.0.2:7700", Name: "Phone"}, peer)

	peer, err = cfg.Peer("10.0.0.3:7700")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.3:7700", peer.DisplayName())

	peer, err = cfg.Peer("")
	require.NoError(t, err)
	assert.Equal(t, "Phone", peer.Name)

	peer, err = cfg.Peer("192.168.1.9:1")
	require.NoError(t, err)
	assert.Equal(t, transport.PeerInfo{Addr: "192.168.1.9:1"}, peer)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SPPLINK_LINK_TRANSPORT", "ws")
	t.Setenv("SPPLINK_COMMAND_FORMAT", "json")
	cfg, err := Load(writeConfig(t, "link:\n  transport: tcp\n"))
	require.NoError(t, err)
	assert.Equal(t, "ws", cfg.Link.Transport)
	assert.Equal(t, "json", cfg.Command.Format)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	p := writeConfig(t, `
log:
  level: loud
link:
  transport: bluetooth
  service: not-a-uuid
peers:
  - name: nowhere
command:
  format: xml
`)
	_, err := Load(p)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)
}

func TestPeerWithoutConfig(t *testing.T) {
	_, err := Default().Peer("")
	assert.Error(t, err)
}
