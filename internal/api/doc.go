// Package api holds the HTTP handlers. Handlers decode and validate
// requests, call the services and translate their errors to status codes
// through MapErrorToStatusCode. Routing and middleware order live in
// cmd/server.
package api
