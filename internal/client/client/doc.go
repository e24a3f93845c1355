// Package client wraps the gRPC connection to the authentication server
// and translates transport errors into sentinel errors the rest of the
// CLI can branch on.
package client
