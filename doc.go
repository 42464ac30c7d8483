// Package main provides the entry point of the backend service.
// It loads the settings from the environment and an optional .env file,
// initializes logging and serves a fiber application with diagnostics,
// API documentation in debug mode and a versioned API backed by gorm.
// Schema migrations are managed with the migrate subcommands.
package main
