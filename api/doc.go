// Package api exposes the game service over a JSON REST interface.
//
// Routes:
//
//	POST   /api/sessions                       create a session {config_id, seed}
//	GET    /api/sessions                       list (?sort=created|accessed&order=asc|desc&limit=N)
//	GET    /api/sessions/{id}                  session details
//	DELETE /api/sessions/{id}                  delete a session
//	GET    /api/sessions/{id}/state            current game state
//	POST   /api/sessions/{id}/move             {direction, reset}
//	POST   /api/sessions/{id}/bulk-move        {moves, reset}
//	POST   /api/sessions/{id}/reset            start a new board
//	GET    /api/sessions/{id}/history          paginated move history
//	GET    /api/sessions/{id}/cells/{row}/{col} inspect one cell
//	POST   /api/sessions/{id}/tiles            place a tile {row, col, value} (debug configs only)
//	GET    /api/configs                        available game configs
//	POST   /api/configs                        save a config
//	GET    /api/configs/{name}                 one config
//	GET    /health                             liveness
//	GET    /ws?session={id}                    live updates over WebSocket
//
// Errors are returned as {"error": "..."}. Not found maps to 404, bad input
// (direction, position, tile value, config) to 400, a finished game or a
// duplicate id to 409, and debug actions on a normal game to 403.
//
// Every state change is pushed to the session's WebSocket viewers.
package api
