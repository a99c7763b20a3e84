package domain

import "encoding/json"

// Broadcast group names. Subscribers attach to a group and receive every
// event published to it while attached.
const (
	GroupContentUpdates = "content-updates"
	GroupDeviceStats    = "device-stats"
)

// Wire message types.
const (
	TypeContentUpdate    = "content_update"
	TypeStatsUpdate      = "stats_update"
	TypeGetActiveContent = "get_active_content"
	TypeDeviceHeartbeat  = "device_heartbeat"
)

// ContentProjection is the client-facing shape of a content item.
type ContentProjection struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	ContentType     string  `json:"content_type"`
	TextContent     string  `json:"text_content"`
	ImageURL        *string `json:"image_url"`
	BackgroundColor string  `json:"background_color"`
	TextColor       string  `json:"text_color"`
	FontSize        int     `json:"font_size"`
}

// StatsSnapshot is the client-facing connection statistics payload.
type StatsSnapshot struct {
	ConnectedDevices int    `json:"connected_devices"`
	QRScans          int    `json:"qr_scans"`
	SessionName      string `json:"session_name"`
}

// ContentUpdate is the outbound envelope on the content-updates group.
// Content is null when no item is active.
type ContentUpdate struct {
	Type    string             `json:"type"`
	Content *ContentProjection `json:"content"`
}

// StatsUpdate is the outbound envelope on the device-stats group.
type StatsUpdate struct {
	Type  string        `json:"type"`
	Stats StatsSnapshot `json:"stats"`
}

// InboundMessage is a command sent by a client over a websocket channel.
// SessionID identifies the device for heartbeats; it is carried in the
// message rather than bound to the transport, since one browser session may
// reconnect transports.
type InboundMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
}

// EncodeContentUpdate marshals a content_update event for broadcast.
func EncodeContentUpdate(content *ContentProjection) ([]byte, error) {
	return json.Marshal(ContentUpdate{Type: TypeContentUpdate, Content: content})
}

// EncodeStatsUpdate marshals a stats_update event for broadcast.
func EncodeStatsUpdate(stats StatsSnapshot) ([]byte, error) {
	return json.Marshal(StatsUpdate{Type: TypeStatsUpdate, Stats: stats})
}

// Broadcaster publishes an opaque event payload to every subscriber of a
// group. Implementations never inspect the payload.
type Broadcaster interface {
	Publish(group string, payload []byte)
}
