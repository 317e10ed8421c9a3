package spiral

import "sync"

// Cache memoizes the most recent Build. Geometry only changes when the
// constants change, so one entry is enough.
type Cache struct {
	mu     sync.Mutex
	params Params
	geom   *Geometry
	builds int
}

// Get returns the geometry for p, building it only if p differs from the
// previous call.
func (c *Cache) Get(p Params) (*Geometry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.geom != nil && c.params == p {
		return c.geom, nil
	}

	g, err := Build(p)
	if err != nil {
		return nil, err
	}
	c.params = p
	c.geom = g
	c.builds++
	return g, nil
}

// Builds returns how many times the cache has rebuilt the geometry.
func (c *Cache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}
