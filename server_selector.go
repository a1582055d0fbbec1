package arcus

import "github.com/pior/arcus/internal"

// ServerSelector picks the index of the server owning key among
// serverCount servers.
type ServerSelector func(key string, serverCount int) int

// DefaultServerSelector uses Jump Hash over the xxh3 hash of the key.
// Jump Hash moves few keys when servers are added or removed.
func DefaultServerSelector(key string, serverCount int) int {
	return internal.KeyIndex(key, serverCount)
}

// staticSelector is used in tests to always select a specific server.
func staticSelector(index int) ServerSelector {
	return func(key string, serverCount int) int {
		return index % serverCount
	}
}
