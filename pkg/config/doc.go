// Package config loads typed configuration structs from environment
// variables.
//
// It wraps github.com/caarlos0/env for struct-tag parsing and loads a .env
// file once per process via github.com/joho/godotenv, so local development
// and production use the same code path.
package config
