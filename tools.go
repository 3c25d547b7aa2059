//go:build tools

// Package rental_chat pins the code generators run by go:generate (mockgen
// for the mocks package) so go.mod and go.sum track them.
package rental_chat

import (
	_ "go.uber.org/mock/mockgen"
)
