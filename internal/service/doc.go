// Package service contains the application use cases. It orchestrates domain
// objects and the repositories defined in internal/store, and translates
// storage errors into the service errors the API layer understands.
//
// Services receive their dependencies through constructor injection and never
// depend on a concrete storage implementation.
package service
