// Package site serves the embedded rider console: the countdown, the
// I AM OK button and the contact list, driven by the JSON API.
package site

import (
	"context"
	"net/http"
)

// Register attaches the console to mux at / and /console/.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("GET /{$}", files)
	mux.Handle("GET /console/", http.StripPrefix("/console", files))
}
