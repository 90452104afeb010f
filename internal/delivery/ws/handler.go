package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/companion/internal/domain"
	"github.com/Vovarama1992/companion/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ImageURLPrefix = "/media/images/"
	VideoURLPrefix = "/media/videos/"
)

type inbound struct {
	Text string `json:"text"`
}

type outbound struct {
	ports.ConversationEvent
	URL string `json:"url,omitempty"`
}

// WSHandler joins the socket to the session named by ?session= (a new one if empty).
// Every socket in a session sees the same transcript.
func WSHandler(hub *Hub, sessions *domain.SessionManager, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("[WS] upgrade failed", zap.Error(err))
			return
		}

		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		conv, created := sessions.Open(sessionID)
		roomID := roomKey(conv)

		log.Info("[WS] start", zap.String("session", sessionID))
		hub.Register(roomID, conn)

		// joined after the farewell: the pump may already have closed the room
		ended := conv.State() == domain.StateEnded
		if !ended {
			hub.SendToConn(roomID, conn, mustJSON(outbound{
				ConversationEvent: ports.ConversationEvent{SessionID: sessionID, Kind: "session"},
			}))
		}
		if created {
			go pump(hub, conv, roomID, log)
		}

		defer func() {
			log.Info("[WS] end", zap.String("session", sessionID))
			if hub.Unregister(roomID, conn) == 0 {
				conv.Close()
			}
		}()

		if ended {
			hub.SendToConn(roomID, conn, errorFrame(sessionID, domain.ErrSessionEnded.Error()))
			return
		}

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var in inbound
			if err := json.Unmarshal(raw, &in); err != nil {
				hub.SendToConn(roomID, conn, errorFrame(sessionID, "bad json"))
				continue
			}

			if !domain.IsTermination(in.Text) && strings.TrimSpace(in.Text) != "" && conv.State() != domain.StateEnded {
				hub.SendToRoom(roomID, mustJSON(outbound{ConversationEvent: ports.ConversationEvent{
					SessionID: sessionID,
					Kind:      ports.EventMessage,
					Sender:    domain.UserSender,
					Text:      in.Text,
				}}))
			}

			switch err := conv.Submit(in.Text); {
			case err == nil, errors.Is(err, domain.ErrEmptyInput):
			default:
				hub.SendToConn(roomID, conn, errorFrame(sessionID, err.Error()))
			}
		}
	}
}

// roomKey is per conversation, so a session reopened after a farewell
// never shares a room with the conversation it replaces.
func roomKey(conv *domain.Conversation) string {
	return fmt.Sprintf("%s#%p", conv.ID(), conv)
}

// pump is the only reader of a conversation's events; it fans them out to the room
// and closes the room when the conversation is over.
func pump(hub *Hub, conv *domain.Conversation, roomID string, log *zap.Logger) {
	id := conv.ID()
	for ev := range conv.Events() {
		hub.SendToRoom(roomID, encodeEvent(ev))
	}

	log.Info("[WS] conversation over", zap.String("session", id))
	hub.SendToRoom(roomID, mustJSON(outbound{ConversationEvent: ports.ConversationEvent{SessionID: id, Kind: "end"}}))
	hub.CloseRoom(roomID)
}

func encodeEvent(ev ports.ConversationEvent) []byte {
	out := outbound{ConversationEvent: ev}
	switch ev.Kind {
	case ports.EventImage:
		out.URL = ImageURLPrefix + url.PathEscape(filepath.Base(ev.Path))
	case ports.EventVideo:
		out.URL = VideoURLPrefix + url.PathEscape(filepath.Base(ev.Path))
	}
	return mustJSON(out)
}

func errorFrame(roomID, text string) []byte {
	return mustJSON(outbound{ConversationEvent: ports.ConversationEvent{
		SessionID: roomID,
		Kind:      ports.EventError,
		Text:      text,
	}})
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
