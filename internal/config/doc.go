// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional YAML file. It provides
// type-safe access to the server, token, game and session settings while
// keeping configuration details separate from game logic.
package config
