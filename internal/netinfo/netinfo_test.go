package netinfo

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickAddress_PrefersHotspotRange(t *testing.T) {
	candidates := []net.IP{
		net.ParseIP("192.168.1.50").To4(),
		net.ParseIP("192.168.4.1").To4(),
	}
	assert.Equal(t, "192.168.4.1", pickAddress(candidates))
}

func TestPickAddress_FallsBackToPrivate(t *testing.T) {
	candidates := []net.IP{
		net.ParseIP("192.168.1.50").To4(),
	}
	assert.Equal(t, "192.168.1.50", pickAddress(candidates))
}

func TestPickAddress_NoCandidates(t *testing.T) {
	assert.Equal(t, "localhost", pickAddress(nil))
}

func TestParseHostapdConf(t *testing.T) {
	conf := `# hostapd configuration
interface=wlan0
driver=nl80211
ssid=GameHub
hw_mode=g
channel=7
wpa=2
wpa_passphrase=gamehub123
`
	hotspot := parseHostapdConf(strings.NewReader(conf))
	assert.Equal(t, "GameHub", hotspot.SSID)
	assert.Equal(t, "gamehub123", hotspot.Password)
}

func TestParseHostapdConf_MissingKeys(t *testing.T) {
	hotspot := parseHostapdConf(strings.NewReader("interface=wlan0\n"))
	assert.Empty(t, hotspot.SSID)
	assert.Empty(t, hotspot.Password)
}

func TestDiscoverHotspot_ConfiguredWins(t *testing.T) {
	hotspot := DiscoverHotspot("MySSID", "MyPass")
	assert.Equal(t, "MySSID", hotspot.SSID)
	assert.Equal(t, "MyPass", hotspot.Password)
}
