// Package httpapi serves the panel operations as a loopback JSON API for the
// desktop UI.
//
// Routing uses chi; every response is JSON and failures carry an
// {"error": "..."} body whose status code reflects the error class.
package httpapi
