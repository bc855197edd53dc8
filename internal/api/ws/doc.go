// Package ws streams window navigation events over WebSocket.
//
// A client connects to /windows/:id/stream and receives every event the
// window dispatches (hashchange, popstate, load) as a JSON message.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//   - execute: Run a tool against the window; data is {"tool_id", "params"}
//
// Message Types (Server → Client):
//   - system: Subscription acknowledged
//   - event: A navigation event
//   - result: Tool result for an execute message
//   - pong, error
package ws
