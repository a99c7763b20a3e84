// Package netinfo discovers the address and hotspot credentials clients use
// to reach the display. On the kiosk the device runs its own Wi-Fi access
// point, so the interesting address is the hotspot interface, not whatever
// uplink happens to exist.
package netinfo

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
)

const hostapdConfPath = "/etc/hostapd/hostapd.conf"

// hotspotPrefixes are the address ranges typically assigned to a local
// access point interface, in preference order.
var hotspotPrefixes = []string{
	"192.168.4.",
	"192.168.2.",
	"192.168.137.",
	"10.",
}

// Hotspot holds the credentials rendered into the Wi-Fi QR code.
type Hotspot struct {
	SSID     string
	Password string
}

// LocalIP returns the IPv4 address clients should connect to, preferring
// hotspot ranges over other private addresses. It falls back to "localhost"
// when no candidate exists.
func LocalIP() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		slog.Warn("Failed to list network interfaces", "error", err)
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipNet.IP.To4(); ip != nil {
				candidates = append(candidates, ip)
			}
		}
	}

	return pickAddress(candidates)
}

// pickAddress chooses the best address from candidates: a hotspot-range
// address wins, then any private address, then "localhost".
func pickAddress(candidates []net.IP) string {
	for _, prefix := range hotspotPrefixes {
		for _, ip := range candidates {
			if strings.HasPrefix(ip.String(), prefix) {
				return ip.String()
			}
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}

	return "localhost"
}

// DiscoverHotspot resolves the hotspot credentials. Explicit configuration
// wins; otherwise the hostapd config is consulted; failing both, the SSID
// falls back to the hostname and the password stays empty.
func DiscoverHotspot(configuredSSID, configuredPassword string) Hotspot {
	if configuredSSID != "" {
		return Hotspot{SSID: configuredSSID, Password: configuredPassword}
	}

	if file, err := os.Open(hostapdConfPath); err == nil {
		defer file.Close()
		if hotspot := parseHostapdConf(file); hotspot.SSID != "" {
			return hotspot
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "gamehub"
	}
	return Hotspot{SSID: hostname}
}

// parseHostapdConf extracts ssid and wpa_passphrase from a hostapd config.
func parseHostapdConf(r io.Reader) Hotspot {
	var hotspot Hotspot

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ssid":
			hotspot.SSID = strings.TrimSpace(value)
		case "wpa_passphrase":
			hotspot.Password = strings.TrimSpace(value)
		}
	}

	return hotspot
}
