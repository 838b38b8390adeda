// Package instagram talks to the Instagram web API: it owns the
// authenticated HTTP session and its verified login state, paces and
// classifies every request, and normalizes the handful of envelope shapes
// the search endpoint is known to serve.
package instagram
