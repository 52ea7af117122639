// Package domain contains the core game entities, value objects, and
// domain logic of the application: cards, the deck and its shuffle, the
// game state and the results a selection can produce. It is independent of
// any timing, transport or rendering mechanism.
package domain
