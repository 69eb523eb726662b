// Package server hosts the Fiber HTTP service that exposes the segment service
// over JSON. It owns the middleware chain (panic recovery, request IDs, access
// logging); the handlers themselves live in the routes subpackage and accept
// their dependencies explicitly so tests can inject fakes.
package server
