package arcus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticServers(t *testing.T) {
	servers := NewStaticServers("cache1:11211", "cache2:11211")
	assert.Equal(t, []string{"cache1:11211", "cache2:11211"}, servers.List())

	assert.Empty(t, NewStaticServers().List())
}

func TestStaticServers_ConcurrentList(t *testing.T) {
	servers := NewStaticServers("cache1:11211", "cache2:11211", "cache3:11211")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Len(t, servers.List(), 3)
			}
		}()
	}
	wg.Wait()
}
