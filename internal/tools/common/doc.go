// Package common holds what every tool package shares: the JSON envelope,
// argument accessors and the instrumented handler that is the single place
// where failures are turned into error envelopes.
package common
