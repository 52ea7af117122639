// Package game implements the memory-matching engine.
//
// An Engine owns one game: it deals and shuffles the deck, accepts card
// selections one at a time, resolves pairs, and reports every transition to
// an events.EventEmitter. A mismatched pair stays face up until a
// pair_revert task scheduled on a task.Scheduler turns it face down again;
// selections are rejected as locked until then. Restarting bumps the game
// generation, so a revert scheduled by an earlier game never touches the
// new one.
//
// Events are delivered after the engine's state lock is released and in the
// order the transitions happened, one goroutine at a time. Handlers may call
// any Engine method; events caused by a call made from inside a handler are
// delivered after the current one.
package game
