// Package tor runs an embedded Tor daemon for duckfetch.
//
// When the --tor flag is given, searches leave through Tor instead of the
// configured proxy list. The daemon is managed by github.com/nao1215/tornago
// and exposes a local SOCKS5 port, which is handed to the search fetcher as
// an ordinary socks5 proxy endpoint.
//
// Bootstrapping a fresh Tor daemon usually takes one to three minutes.
package tor
