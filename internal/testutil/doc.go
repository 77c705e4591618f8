// Package testutil contains fake tools shared across package tests: counting,
// slow (concurrency tracking), failing and panicking implementations. They
// satisfy the tool contract structurally so no runtime package is imported.
// They are not intended for production usage.
package testutil
