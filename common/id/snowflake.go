package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has an effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new time-ordered int64 ID. Init must have been called.
func New() int64 {
	return node.Generate().Int64()
}

// NewRunID returns a fresh ID for one report run, initializing the node on
// first use. A single process only ever runs on node 1.
func NewRunID() (int64, error) {
	if err := Init(1); err != nil {
		return 0, fmt.Errorf("initializing id node: %w", err)
	}
	return New(), nil
}
