// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// The Client is deliberately thin: every tool call is translated into a
// request against the REST API and the JSON response is rendered as text.
// The same server can be driven over stdio or mounted on the HTTP router.
//
// Tools:
//   - create_session, list_sessions, get_session, list_configs
//   - game_state, move, bulk_move, reset_game, move_history
//   - describe_cell, place_tile (debug configs only)
//   - game_instructions
//
// Boards are rendered row 0 first with "." for empty cells:
//
//	  2   .   .   .
//	  .   4   .   .
//	  .   . 128   .
//	  .   .   .   2
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
