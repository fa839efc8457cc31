package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/starford/designa/internal/effects"
)

const (
	wsReadLimit    = 64 << 10
	wsWriteTimeout = 5 * time.Second
	wsFeedBuffer   = 32
)

// newUpgrader accepts browser handshakes from the same origins CORS allows.
// A request without an Origin header is not from a browser and is accepted.
func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
				return true
			}
			return originAllowed(origin, allowedOrigins)
		},
	}
}

// originAllowed matches origin against the list, honouring "*" and a single
// wildcard such as "https://*.example.com".
func originAllowed(origin string, allowed []string) bool {
	origin = strings.ToLower(origin)
	for _, a := range allowed {
		a = strings.ToLower(a)
		if a == "*" || a == origin {
			return true
		}
		if prefix, suffix, ok := strings.Cut(a, "*"); ok &&
			len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// effectsMessage is a client report: "pointer", "scroll" or "resize".
type effectsMessage struct {
	Type     string                `json:"type"`
	X        float64               `json:"x"`
	Y        float64               `json:"y"`
	Width    float64               `json:"width"`
	Height   float64               `json:"height"`
	Sections []effects.SectionRect `json:"sections"`
}

type frameMessage struct {
	Type  string        `json:"type"`
	Frame effects.Frame `json:"frame"`
}

// EffectsStream returns the GET /api/effects/ws handler. The client reports
// pointer, scroll and resize events; the server streams rendered frames
// until either side closes. Browser handshakes must come from one of
// allowedOrigins.
func (h *Handler) EffectsStream(allowedOrigins []string) http.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		h.streamEffects(upgrader, w, r)
	}
}

func (h *Handler) streamEffects(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.d.Logger.Debug("effects: upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	feed := effects.NewFeed(wsFeedBuffer)
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer cancel()
		readEffects(conn, feed, h.d.Logger)
	}()

	err = effects.Run(ctx, h.d.Effects, feed, feed, func(_ context.Context, f effects.Frame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(frameMessage{Type: "frame", Frame: f})
	})
	if err != nil {
		h.d.Logger.Debug("effects: stream ended", slog.String("error", err.Error()))
	}

	// Closing the connection unblocks the reader.
	_ = conn.Close()
	<-readDone
}

func readEffects(conn *websocket.Conn, feed *effects.Feed, logger *slog.Logger) {
	for {
		var msg effectsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("effects: read error", slog.String("error", err.Error()))
			}
			return
		}
		now := time.Now()
		switch msg.Type {
		case "pointer":
			feed.PushPointer(effects.PointerEvent{X: msg.X, Y: msg.Y, At: now})
		case "scroll":
			if msg.Sections == nil {
				msg.Sections = []effects.SectionRect{}
			}
			feed.PushScroll(effects.ScrollEvent{Sections: msg.Sections, Width: msg.Width, Height: msg.Height, At: now})
		case "resize":
			feed.PushScroll(effects.ScrollEvent{Width: msg.Width, Height: msg.Height, At: now})
		default:
			logger.Debug("effects: unknown message", slog.String("type", msg.Type))
		}
	}
}
