// Package config loads and validates the daemon configuration.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file (Load with a non-empty path)
//  3. CRAFTWATCH_* environment variables, with .env files picked up
//     via godotenv for development setups
//
// Durations in the YAML file are written as Go duration strings
// ("5s", "24h"); the Duration type handles the decoding.
package config
