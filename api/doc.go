// Package api provides the HTTP REST API for blockfall sessions.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {config_id, auto_tick}
//   - GET /api/sessions - List sessions (?sort=accessed|created|score&order=asc|desc&limit=n)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session and stop its gravity driver
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/action - Apply one intent {intent}
//   - POST /api/sessions/{id}/actions - Apply a batch {intents: [...]}
//   - POST /api/sessions/{id}/tick - Advance gravity by one step
//   - POST /api/sessions/{id}/reset - Start a fresh game
//   - POST /api/sessions/{id}/autotick - Start or stop the gravity driver {enabled}
//   - GET /api/sessions/{id}/suggest - Planner placement for the active piece
//
// Configuration:
//   - GET /api/configs - List presets
//   - GET /api/configs/{name} - Get a preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket state updates
//
// Intents are left, right, rotate, soft_drop, hard_drop, pause and tick;
// engine.ParseIntent also accepts aliases such as move_left or drop. A batch
// with any unknown intent is rejected before anything is applied.
//
// Errors are returned as {"error": "message"}:
//
//	404  unknown session or preset
//	400  malformed body, unknown intent, empty batch, invalid preset
//	409  game over (autotick, suggest) or no legal placement
//	500  anything else
package api
