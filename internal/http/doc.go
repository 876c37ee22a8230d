// Package http exposes the gateway's REST surface: class admission,
// session reconciliation and a small batch catalog. Authentication happens
// upstream; caller identity arrives in trusted headers.
package http
