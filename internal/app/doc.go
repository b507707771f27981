// Package app contains the core application logic. It builds one document
// into an object graph, renders it, and optionally rebuilds on change,
// decoupled from any specific entrypoint like a CLI.
package app
