// Package events provides the types and interfaces through which a game
// reports its state changes.
//
// The engine emits a StateChangeEvent for every reveal, match, mismatch,
// revert, start and win without knowing which handlers will process it,
// keeping game logic decoupled from rendering and transport.
//
// The primary components are:
// - StateChangeEvent: One observable transition of a game
// - EventHandler: Interface for components that observe events (onStateChange)
// - EventEmitter: Interface for components that can emit events
// - InMemoryEventEmitter: Ordered fan-out to registered handlers
package events
