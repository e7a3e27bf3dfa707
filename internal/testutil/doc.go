// Package testutil provides recording fakes and fixtures shared by the
// engine, harness, and cli tests.
package testutil
