// Package stream pushes a game's state changes to WebSocket clients.
//
// Each connection subscribes to one game through the SessionService and
// receives every StateChangeEvent as a JSON text message, in emission order.
// Delivery never blocks the engine: a client that falls too far behind is
// disconnected and is expected to reconnect and fetch a fresh snapshot.
package stream
