package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairKey_String_Is_Unambiguous(t *testing.T) {
	req := require.New(t)

	// Given keys whose fields would join to the same text
	keys := []PairKey{
		NewPairKey("alice", "bob", Context{ProductID: "p|x"}),
		NewPairKey("alice", "bob", Context{ProductID: "p", BookingID: "x|"}),
		NewPairKey("alice", "bob|p", Context{BookingID: "x"}),
		NewPairKey("alice:", "bob", Context{}),
		NewPairKey("alice", ":bob", Context{}),
	}

	// Then they all render differently
	seen := map[string]PairKey{}
	for _, key := range keys {
		_, dup := seen[key.String()]
		req.False(dup, key.String())
		seen[key.String()] = key
	}

	// And the pair order does not matter
	req.Equal(NewPairKey("a", "b", Context{ProductID: "p"}).String(), NewPairKey("b", "a", Context{ProductID: "p"}).String())
}
