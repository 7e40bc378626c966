package pkguid

import (
	"github.com/bwmarrin/snowflake"
)

// Snowflake generates numeric IDs using the Snowflake algorithm.
type Snowflake struct {
	node *snowflake.Node
}

// snowflakeNodeID maps a fingerprint onto the 10-bit Snowflake node space.
func snowflakeNodeID(fp Fingerprint) int64 {
	return int64(fp.Value()) & (1<<10 - 1)
}

// NewSnowflake constructs a Snowflake generator whose node id is taken from
// the fingerprint, so it shares the device identity used by tokens.
func NewSnowflake(fp Fingerprint) (*Snowflake, error) {
	snowflake.Epoch = Timebase * 1000

	node, err := snowflake.NewNode(snowflakeNodeID(fp))
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique numeric ID.
func (s *Snowflake) Generate() uint64 {
	return uint64(s.node.Generate().Int64())
}
