// Package events publishes game events to NATS.
//
// Publisher implements service.Notifier. Each GameEvent becomes one message
// on <prefix>.<session>.<type>, for example blockfall.ab12.line_clear, with
// a small JSON Envelope carrying the score, level, lines and status after the
// change. The board is not published; subscribers that need it can call the
// REST API.
//
// Publishing is fire-and-forget: failures are logged and never reach the
// game loop.
package events
