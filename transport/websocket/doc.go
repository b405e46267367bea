// Package websocket pushes live session updates to browser clients.
//
// A central Hub owns every connection. Clients attach to one session via
// the ?session= query parameter and only receive that session's messages.
// Session IDs are matched case-insensitively.
//
// The Hub implements service.Notifier, so the game service reports every
// state change (intents, resets and gravity ticks) without the HTTP layer
// broadcasting anything itself. Notify never blocks: when the hub falls
// behind, updates are dropped and a slow client is disconnected.
//
// Message Protocol:
//
// Outgoing messages are JSON objects, one per frame:
//
//	{"session_id": "ab12", "event": "state_update",
//	 "game_state": {...}, "events": [{"type": "line_clear", ...}]}
//
// Incoming frames are read and discarded; they only keep the connection
// alive alongside ping/pong.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	svc := service.NewGameService(sessions, configs, hub)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
