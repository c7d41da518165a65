package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nmapFixture = `<?xml version="1.0"?>
<nmaprun scanner="nmap">
  <host>
    <address addr="192.168.1.10" addrtype="ipv4"/>
    <hostnames><hostname name="web01.example.com" type="PTR"/></hostnames>
    <ports>
      <port protocol="tcp" portid="80"><state state="open"/><service name="http"/></port>
      <port protocol="tcp" portid="443"><state state="open"/><service name="https"/></port>
      <port protocol="tcp" portid="22"><state state="open"/><service name="ssh"/></port>
      <port protocol="tcp" portid="8080"><state state="closed"/><service name="http-proxy"/></port>
      <port protocol="udp" portid="53"><state state="open"/><service name="domain"/></port>
    </ports>
    <os><osmatch name="Linux 5.4" accuracy="95"/></os>
  </host>
  <host>
    <address addr="10.0.0.5" addrtype="ipv4"/>
    <ports></ports>
  </host>
  <host>
    <address addr="fe80::1" addrtype="ipv6"/>
  </host>
</nmaprun>`

func TestDecodeNmap(t *testing.T) {
	drafts, err := DecodeNmap([]byte(nmapFixture))
	require.NoError(t, err)
	// The IPv6-only host is skipped
	require.Len(t, drafts, 2)

	web := drafts[0]
	assert.Equal(t, "web01.example.com", web.Name)
	assert.Equal(t, "192.168.1.10", web.IPAddress)
	// Only open TCP ports are collected
	assert.Equal(t, []int{80, 443, 22}, web.Ports)
	assert.Equal(t, []string{"http", "https", "ssh"}, web.Services)
	assert.Equal(t, "Linux 5.4", web.OperatingSystem)
}

func TestDecodeNmapHostWithoutPorts(t *testing.T) {
	drafts, err := DecodeNmap([]byte(nmapFixture))
	require.NoError(t, err)

	// Discovery without ports still produces an asset
	bare := drafts[1]
	assert.Equal(t, "10.0.0.5", bare.IPAddress)
	assert.Equal(t, "host-2", bare.Hostname)
	assert.Empty(t, bare.Ports)
	assert.Empty(t, bare.Services)
	assert.Equal(t, "Unknown", bare.OperatingSystem)
}

func TestDecodeNmapMalformed(t *testing.T) {
	_, err := DecodeNmap([]byte("<nmaprun><host>"))
	assert.True(t, errors.Is(err, ErrMalformedInput))
}
