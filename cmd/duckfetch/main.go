// Package main provides the entry point for the duckfetch CLI.
//
// duckfetch queries the DuckDuckGo lite endpoint and prints the organic
// results. Requests can be spread over a list of HTTP or SOCKS5 proxies,
// or sent through an embedded Tor daemon, and failed attempts are retried
// through the next proxy.
//
// Usage:
//
//	duckfetch search <query>
//	duckfetch search --proxies proxies.txt "first query" "second query"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
