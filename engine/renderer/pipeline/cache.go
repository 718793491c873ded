package pipeline

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"golang.org/x/sync/singleflight"
)

// Specializer produces the pipeline descriptor for a specialization key.
type Specializer[K comparable] interface {
	// Specialize describes the pipeline variant selected by key. It must be a pure function of key.
	//
	// Parameters:
	//   - key: the specialization key
	//
	// Returns:
	//   - Descriptor: the pipeline descriptor for the variant
	Specialize(key K) Descriptor
}

// SpecializerFunc adapts a plain function to the Specializer interface.
type SpecializerFunc[K comparable] func(key K) Descriptor

func (f SpecializerFunc[K]) Specialize(key K) Descriptor {
	return f(key)
}

// cacheEntry is the memoized outcome of one build: exactly one of pipeline or err is set.
type cacheEntry struct {
	pipeline Pipeline
	err      error
}

// cache is the implementation of the Cache interface.
type cache[K comparable] struct {
	mu          sync.RWMutex
	entries     map[K]cacheEntry
	group       singleflight.Group
	dev         device.Device
	shaders     shader.Store
	specializer Specializer[K]
}

// Cache maps specialization keys to built pipelines. At most one pipeline is built per
// distinct key for the lifetime of the cache.
type Cache[K comparable] interface {
	// Specialize returns the pipeline for key, building it on first request. Concurrent
	// requests for an unbuilt key wait on a single in-flight build and share its result.
	// A failed build is memoized, so later requests return the same error without rebuilding.
	//
	// Parameters:
	//   - key: the specialization key
	//
	// Returns:
	//   - Pipeline: the cached pipeline
	//   - error: an error wrapping ErrBuildFailed if the key failed to build
	Specialize(key K) (Pipeline, error)

	// Get returns an already built pipeline without building.
	//
	// Parameters:
	//   - key: the specialization key
	//
	// Returns:
	//   - Pipeline: the cached pipeline, or nil
	//   - bool: whether a successfully built pipeline exists for key
	Get(key K) (Pipeline, bool)

	// Len returns the number of memoized keys, failed builds included.
	Len() int

	// Release frees every built pipeline and empties the cache.
	Release()
}

var _ Cache[uint32] = &cache[uint32]{}

// NewCache creates an empty pipeline cache.
//
// Parameters:
//   - dev: the device pipelines are built on
//   - shaders: the shader store descriptors resolve their handles through
//   - specializer: produces a descriptor per key
//
// Returns:
//   - Cache[K]: the new cache
func NewCache[K comparable](dev device.Device, shaders shader.Store, specializer Specializer[K]) Cache[K] {
	return &cache[K]{
		entries:     make(map[K]cacheEntry),
		dev:         dev,
		shaders:     shaders,
		specializer: specializer,
	}
}

func (c *cache[K]) Specialize(key K) (Pipeline, error) {
	if e, ok := c.lookup(key); ok {
		return e.pipeline, e.err
	}

	v, _, _ := c.group.Do(fmt.Sprintf("%#v", key), func() (any, error) {
		// a concurrent flight may have finished between the lookup and Do
		if e, ok := c.lookup(key); ok {
			return e, nil
		}
		e := c.build(key)
		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return e, nil
	})
	e := v.(cacheEntry)
	return e.pipeline, e.err
}

func (c *cache[K]) lookup(key K) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *cache[K]) build(key K) cacheEntry {
	keyStr := fmt.Sprintf("%v", key)
	desc := c.specializer.Specialize(key)
	p, err := Build(c.dev, c.shaders, keyStr, desc)
	if err != nil {
		common.Logger().Error("pipeline build failed", "label", desc.Label, "key", keyStr, "error", err)
		return cacheEntry{err: err}
	}
	common.Logger().Debug("pipeline built", "label", desc.Label, "key", keyStr, "id", p.ID())
	return cacheEntry{pipeline: p}
}

func (c *cache[K]) Get(key K) (Pipeline, bool) {
	e, ok := c.lookup(key)
	if !ok || e.err != nil {
		return nil, false
	}
	return e.pipeline, true
}

func (c *cache[K]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *cache[K]) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.pipeline != nil {
			e.pipeline.Release()
		}
		delete(c.entries, k)
	}
}
