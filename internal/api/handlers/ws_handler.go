package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/teamup-campus/teamup/internal/events"
	"github.com/teamup-campus/teamup/internal/metrics"
	"github.com/teamup-campus/teamup/internal/services"
	"github.com/teamup-campus/teamup/internal/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxFrame   = 16 << 10
)

// ChatSubscriber opens a Pub/Sub subscription on chat channels.
type ChatSubscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

type WSHandler struct {
	chats    services.ChatService
	sub      ChatSubscriber
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler only upgrades requests whose Origin is in origins; an empty list allows same-host requests.
func NewWSHandler(chats services.ChatService, sub ChatSubscriber, origins []string, log *logrus.Logger) *WSHandler {
	if log == nil {
		log = logrus.New()
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return &WSHandler{
		chats: chats,
		sub:   sub,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed[origin]; ok {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && len(allowed) == 0 && u.Host == r.Host
			},
		},
	}
}

type wsClientMsg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type wsServerError struct {
	Type    string     `json:"type"`
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) write(messageType int, b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteMessage(messageType, b)
}

func (w *wsConn) writeError(code utils.Code, msg string) error {
	b, _ := json.Marshal(wsServerError{Type: "error", Code: code, Message: msg})
	return w.write(websocket.TextMessage, b)
}

func (w *wsConn) writeAppError(err error) error {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return w.writeError(ae.Code, ae.Message)
	}
	return w.writeError(utils.CodeInternal, "internal error")
}

// ChatWS relays a chat room: every payload on the room channel goes to the
// socket, and chat:message frames from the socket go through the normal send path.
func (h *WSHandler) ChatWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	chatID := c.Param("chat_id")
	chat, err := h.chats.Authorize(c.Request.Context(), userID, chatID)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader already wrote the response
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxFrame)

	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()

	log := h.log.WithFields(logrus.Fields{"chat_id": chat.ChatID, "user_id": userID})
	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.sub.Subscribe(ctx, events.ChatChannel(chat.ChatID))
	defer pubsub.Close()
	// wait for the subscription so the join event below is not missed by this socket
	if _, err := pubsub.Receive(ctx); err != nil {
		log.WithError(err).Warn("chat subscribe failed")
		return
	}

	if err := h.chats.Join(ctx, userID, chat.ChatID); err != nil {
		log.WithError(err).Warn("join announce failed")
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeError(utils.CodeInvalidArgument, "invalid json")
				continue
			}

			switch msg.Type {
			case "chat:message":
				// the stored message reaches this socket through the room channel
				if _, err := h.chats.Send(ctx, userID, chat.ChatID, msg.Content); err != nil {
					_ = wc.writeAppError(err)
				}
			case "ping":
				_ = wc.write(websocket.TextMessage, []byte(`{"type":"pong"}`))
			default:
				_ = wc.writeError(utils.CodeInvalidArgument, "unknown message type")
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	room := pubsub.Channel()

	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wc.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case m, ok := <-room:
			if !ok {
				return
			}
			if err := wc.write(websocket.TextMessage, []byte(m.Payload)); err != nil {
				return
			}
		}
	}
}
