// Package fetch provides the default retrieval capability injected into the
// save engine and the input plugins: an HTTP GET with retries, a timeout and
// a response size limit.
package fetch
