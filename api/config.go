// Package api provides the HTTP API server for submitting memory
// reconstruction runs and polling their results.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string
}
