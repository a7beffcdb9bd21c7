// Package assets embeds the browser client served to deck pages.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed client/*
var clientFS embed.FS

// Paths under which the client is served.
const (
	ClientJSPath  = "/_wrap/assets/wrap-client.js"
	ClientCSSPath = "/_wrap/assets/wrap-client.css"
)

// ClientFS returns the embedded client files
func ClientFS() fs.FS {
	sub, err := fs.Sub(clientFS, "client")
	if err != nil {
		panic(err)
	}
	return sub
}

// GetClientJS returns the browser JavaScript
func GetClientJS() ([]byte, error) {
	return clientFS.ReadFile("client/wrap-client.js")
}

// GetClientCSS returns the browser CSS
func GetClientCSS() ([]byte, error) {
	return clientFS.ReadFile("client/wrap-client.css")
}

// Tags is the markup injected into served decks to load the client.
func Tags() string {
	return `<link rel="stylesheet" href="` + ClientCSSPath + `">` +
		`<script src="` + ClientJSPath + `" defer></script>`
}
