package http

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/routeslope/internal/adapters/nats"
	"github.com/samirrijal/routeslope/internal/pkg/metrics"
)

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// wsMessage is sent from client to subscribe/unsubscribe to analyses.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Geohash string `json:"geohash"` // origin geohash prefix, up to 5 chars ("" = all)
}

// subjectFor returns the NATS subject covering prefix. Prefixes shorter than
// a full subject token subscribe to everything and filter locally.
func subjectFor(prefix string) string {
	if len(prefix) == 5 {
		return natsadapter.SubjectPrefix + prefix
	}
	return natsadapter.SubjectAll
}

func validGeohashPrefix(prefix string) bool {
	if len(prefix) > 5 {
		return false
	}
	for _, r := range prefix {
		if !strings.ContainsRune(geohashAlphabet, r) {
			return false
		}
	}
	return true
}

// WebSocketHandler returns a handler that upgrades to WebSocket
// and relays slope analysis events from NATS to connected clients.
// Clients send JSON: {"action":"subscribe","geohash":"u0nd"}
// Every connection starts subscribed to all analyses (geohash "").
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // geohash prefix -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subscribe := func(prefix string) (*nats.Subscription, error) {
			return nc.Subscribe(subjectFor(prefix), func(msg *nats.Msg) {
				hash := strings.TrimPrefix(msg.Subject, natsadapter.SubjectPrefix)
				if strings.HasPrefix(hash, prefix) {
					_ = writeJSON(json.RawMessage(msg.Data))
				}
			})
		}

		sub, err := subscribe("")
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[""] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			prefix := strings.ToLower(m.Geohash)
			if !validGeohashPrefix(prefix) {
				_ = writeJSON(map[string]string{"error": "invalid geohash: " + m.Geohash})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[prefix]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "geohash": prefix})
					continue
				}
				s, err := subscribe(prefix)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[prefix] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "geohash": prefix})

			case "unsubscribe":
				if s, exists := subs[prefix]; exists {
					_ = s.Unsubscribe()
					delete(subs, prefix)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "geohash": prefix})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + prefix})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
