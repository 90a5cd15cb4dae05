package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"savethebirds/internal/broadcast"
	"savethebirds/internal/wshub"
)

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	e, err := s.entry(w, r, false)
	if err != nil || e == nil {
		http.Error(w, "Session not found", http.StatusBadRequest)
		return
	}
	tag := s.language(w, r, e)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	msgChan := e.Broadcaster.Subscribe()
	defer e.Broadcaster.Unsubscribe(msgChan)

	writeEvent := func(event, data string) {
		fmt.Fprintf(w, "event: %s\n", event)
		for _, line := range strings.Split(data, "\n") {
			fmt.Fprintf(w, "data: %s\n", line)
		}
		fmt.Fprint(w, "\n")
		flusher.Flush()
	}
	writeState := func() {
		data, err := json.Marshal(NewView(e.Game.Snapshot(), tag))
		if err != nil {
			s.Logger.Error("encoding state failed", "err", err)
			return
		}
		writeEvent(broadcast.EventState, string(data))
	}

	writeState()
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			switch msg.Event {
			case broadcast.EventState:
				writeState()
			default:
				writeEvent(msg.Event, msg.Data)
			}
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	e, err := s.entry(w, r, false)
	if err != nil || e == nil {
		http.Error(w, "Session not found", http.StatusBadRequest)
		return
	}
	s.language(w, r, e)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	client := wshub.NewClient(uuid.NewString(), conn)
	e.Hub.Register(client)
	defer e.Hub.Unregister(client.ID)

	ctx := r.Context()
	go client.WritePump(ctx)

	client.Queue(wshub.ServerMessage{Type: wshub.TypeState, State: entryView(e, e.Game.Snapshot())})

	err = client.ReadPump(ctx, func(msg wshub.ClientMessage) error {
		switch msg.Type {
		case wshub.TypeStart:
			return e.Game.Start(msg.Name)
		case wshub.TypeAnswer:
			return e.Game.Submit(msg.Value)
		case wshub.TypeRestart:
			return e.Game.Restart()
		default:
			return fmt.Errorf("unknown message type %q", msg.Type)
		}
	})
	if err != nil && ctx.Err() == nil {
		s.Logger.Debug("websocket closed", "session", e.ID, "err", err)
	}
}
