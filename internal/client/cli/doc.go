// Package cli implements the interactive command-line client: a small
// REPL over the authentication service with register, login, and
// liveness commands.
package cli
