// Package watch reruns a callback when a document file or directory changes.
package watch
