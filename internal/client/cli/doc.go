// Package cli implements authctl, the command-line client for authkeeper.
//
// Commands: register, login, refresh, logout, change-password, whoami.
// The token pair returned by login is kept in a session file; commands that
// need an access token refresh it once when the server rejects it.
package cli
