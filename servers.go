package arcus

// Servers provides the list of server addresses. Implementations must be
// safe for concurrent use; List is called for every operation.
type Servers interface {
	List() []string
}

// StaticServers is a fixed server list.
type StaticServers struct {
	addrs []string
}

// NewStaticServers returns a fixed list of "host:port" addresses.
func NewStaticServers(addrs ...string) *StaticServers {
	return &StaticServers{addrs: addrs}
}

func (s *StaticServers) List() []string {
	return s.addrs
}
