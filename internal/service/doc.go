// Package service hosts the application layer of the game server.
//
// SessionService keeps many independent single-player games in memory. Each
// session owns one game.Engine and the events.InMemoryEventEmitter it reports
// to, so subscribers of one game never see another game's events. Sessions
// that see no activity for the configured idle timeout are swept by a
// background janitor.
//
// Expected conditions are reported with sentinel errors (ErrSessionNotFound,
// ErrTooManySessions); unexpected failures are wrapped in ServiceError.
package service
