// Package testutil contains helpers used across tests to reduce boilerplate
// when exercising adapters: a testify mock of core.Backend with exact call
// accounting and a stub conversable agent whose receive entry point can be
// intercepted. They are not intended for production usage.
package testutil
