// Package api exposes games over HTTP. Handlers translate requests into
// SessionService calls and render the results as JSON; the middleware
// subpackage checks game tokens and the shared subpackage holds the request
// and response helpers.
package api
