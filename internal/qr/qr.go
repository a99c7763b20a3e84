// Package qr renders the two QR codes shown on the display page: one for
// joining the Wi-Fi hotspot and one for opening the mobile page.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered PNG edge length in pixels.
const DefaultSize = 256

// WifiPayload builds the standard Wi-Fi network QR payload. Phone cameras
// recognize it and offer to join the network directly.
func WifiPayload(ssid, password string) string {
	return fmt.Sprintf("WIFI:T:WPA;S:%s;P:%s;H:false;;", ssid, password)
}

// DataURI encodes content as a QR PNG and returns it as a data URI suitable
// for an <img src> attribute.
func DataURI(content string, size int) (string, error) {
	if size <= 0 {
		size = DefaultSize
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
