package common

import (
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snode     *snowflake.Node
	snodeOnce sync.Once
)

// UUIDint64 returns a cluster-safe int64 identifier
func UUIDint64() int64 {
	snodeOnce.Do(func() {
		rand.Seed(time.Now().UnixNano())
		node, err := snowflake.NewNode(rand.Int63n(1023))
		if err != nil {
			panic(err)
		}
		snode = node
	})
	return snode.Generate().Int64()
}
