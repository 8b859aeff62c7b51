package loadbalancer

import (
	"hash/crc32"
	"sort"
	"strconv"
	"sync"
)

// ConsistentHash routes by hashing key onto a ring of virtual nodes, so
// adding or removing an instance only reshuffles the keys that land in its
// neighborhood instead of the whole keyspace. VirtualNodes controls how
// many ring points each instance gets; more points smooth the load
// distribution at the cost of a bigger ring to search.
type ConsistentHash struct {
	VirtualNodes int

	mu       sync.Mutex
	ring     []uint32
	byHash   map[uint32]*ServiceInstance
	membersOf map[string][]uint32 // instance ID -> ring points, for removal
}

// defaultVirtualNodes is the per-instance ring-point count used when the
// caller doesn't specify one.
const defaultVirtualNodes = 150

// NewConsistentHash builds a ConsistentHash with virtualNodes points per
// instance (defaults to 150 if <= 0).
func NewConsistentHash(virtualNodes int) *ConsistentHash {
	if virtualNodes <= 0 {
		virtualNodes = defaultVirtualNodes
	}
	return &ConsistentHash{
		VirtualNodes: virtualNodes,
		byHash:       make(map[uint32]*ServiceInstance),
		membersOf:    make(map[string][]uint32),
	}
}

func ringKey(instanceID string, replica int) uint32 {
	return crc32.ChecksumIEEE([]byte(instanceID + "#" + strconv.Itoa(replica)))
}

// add places instance's virtual nodes on the ring. Called by LoadBalancer
// on Register so the ring always reflects the current pool.
func (c *ConsistentHash) add(inst *ServiceInstance) {
	c.mu.Lock()
	defer c.mu.Unlock()

	points := make([]uint32, 0, c.VirtualNodes)
	for i := 0; i < c.VirtualNodes; i++ {
		h := ringKey(inst.ID, i)
		c.byHash[h] = inst
		c.ring = append(c.ring, h)
		points = append(points, h)
	}
	c.membersOf[inst.ID] = points
	sort.Slice(c.ring, func(i, j int) bool { return c.ring[i] < c.ring[j] })
}

// remove takes instance's virtual nodes off the ring. Called by
// LoadBalancer on Deregister.
func (c *ConsistentHash) remove(instanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	points := c.membersOf[instanceID]
	if len(points) == 0 {
		return
	}
	remove := make(map[uint32]struct{}, len(points))
	for _, h := range points {
		remove[h] = struct{}{}
		delete(c.byHash, h)
	}
	kept := c.ring[:0:0]
	for _, h := range c.ring {
		if _, gone := remove[h]; !gone {
			kept = append(kept, h)
		}
	}
	c.ring = kept
	delete(c.membersOf, instanceID)
}

// Pick finds the first ring point at or after hash(key), wrapping around,
// and returns its instance — provided that instance is in healthy (the
// ring itself isn't filtered by health, since an instance mid-probe
// shouldn't lose its ring position permanently). If the owning instance
// isn't healthy, Pick walks forward to the next distinct healthy owner.
func (c *ConsistentHash) Pick(healthy []*ServiceInstance, key string) (*ServiceInstance, error) {
	if len(healthy) == 0 {
		return nil, ErrNoHealthyInstance
	}
	healthySet := make(map[string]*ServiceInstance, len(healthy))
	for _, inst := range healthy {
		healthySet[inst.ID] = inst
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.ring) == 0 {
		return nil, ErrNoHealthyInstance
	}

	target := crc32.ChecksumIEEE([]byte(key))
	start := sort.Search(len(c.ring), func(i int) bool { return c.ring[i] >= target })

	for i := 0; i < len(c.ring); i++ {
		idx := (start + i) % len(c.ring)
		owner := c.byHash[c.ring[idx]]
		if inst, ok := healthySet[owner.ID]; ok {
			return inst, nil
		}
	}
	return nil, ErrNoHealthyInstance
}
