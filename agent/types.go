package agent

import (
	"time"

	"github.com/odvcencio/elevation/state"
)

// Snapshot captures the store and the component tree at one moment.
type Snapshot struct {
	Timestamp time.Time   `json:"timestamp"`
	Version   uint64      `json:"version"`
	State     state.State `json:"state"`
	Frames    int64       `json:"frames"`
	Nodes     []NodeInfo  `json:"nodes,omitempty"`
}

// NodeInfo describes one instance in the component tree.
type NodeInfo struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Phase         string     `json:"phase"`
	Attaches      int        `json:"attaches"`
	Subscriptions int        `json:"subscriptions"`
	Invalidations int        `json:"invalidations"`
	Children      []NodeInfo `json:"children,omitempty"`
}
