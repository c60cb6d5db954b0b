// Package httpapi exposes the planner, the user directory and the event
// store over HTTP/JSON.
package httpapi
