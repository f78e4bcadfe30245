// Package websocket pushes live game updates to browser viewers.
//
// A central Hub tracks clients per session id (case-insensitive). Each
// connection gets a read pump, which only keeps the link alive, and a write
// pump that sends one JSON Message per frame and pings every 54s.
//
// Outgoing messages:
//
//	{"type":"state_update","session_id":"ab12cd34","game_state":{...},"move_result":{...}}
//	{"type":"session_deleted","session_id":"ab12cd34","data":{...}}
//
// Broadcasts never block the caller. When the queue is full the update is
// dropped, and a client that cannot keep up is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//	hub.BroadcastToSession(id, state, result)
package websocket
