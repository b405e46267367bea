// Package mcp exposes blockfall to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so an MCP agent and a browser can play the same session.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board rendered as text ('#' settled, '@' active piece)
//   - act, bulk_act, tick: apply intents
//   - autotick: start or stop real-time gravity
//   - suggest: planner placement plus the intents that reach it
//   - reset_game, list_configs, game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp forwards the body to GetMCPServer().HandleMessage
//
// API errors are returned as tool errors (IsError) rather than Go errors so
// the agent sees the message and can correct its next call.
package mcp
