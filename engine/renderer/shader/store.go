package shader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
)

// ErrNotFound is returned when a handle has no shader registered in the Store.
var ErrNotFound = errors.New("shader: handle not found")

// store is the implementation of the Store interface.
type store struct {
	mu      sync.Mutex
	shaders map[Handle]Shader
	modules map[Handle]device.ShaderModule
}

// Store is the shader asset store owned by a renderer. Plugins register their shaders at
// build time and pipeline caches resolve handles to compiled modules through it.
type Store interface {
	// Add registers a shader under the given handle. Re-registering a handle replaces the
	// shader and releases any module compiled from the previous one.
	//
	// Parameters:
	//   - h: the handle to register under
	//   - s: the shader
	Add(h Handle, s Shader)

	// Get looks up the shader registered under a handle.
	//
	// Parameters:
	//   - h: the shader handle
	//
	// Returns:
	//   - Shader: the registered shader, or nil
	//   - bool: whether the handle was registered
	Get(h Handle) (Shader, bool)

	// Module returns the compiled module for a handle, compiling it on first use.
	// Subsequent calls return the same module.
	//
	// Parameters:
	//   - dev: the device to compile on
	//   - h: the shader handle
	//
	// Returns:
	//   - device.ShaderModule: the compiled module
	//   - error: ErrNotFound for an unknown handle, or the compile error
	Module(dev device.Device, h Handle) (device.ShaderModule, error)

	// Len returns the number of registered shaders.
	Len() int

	// Release frees every compiled module.
	Release()
}

var _ Store = &store{}

// NewStore creates an empty shader store.
//
// Returns:
//   - Store: the new store
func NewStore() Store {
	return &store{
		shaders: make(map[Handle]Shader),
		modules: make(map[Handle]device.ShaderModule),
	}
}

func (s *store) Add(h Handle, sh Shader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.modules[h]; ok {
		m.Release()
		delete(s.modules, h)
	}
	s.shaders[h] = sh
}

func (s *store) Get(h Handle) (Shader, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shaders[h]
	return sh, ok
}

func (s *store) Module(dev device.Device, h Handle) (device.ShaderModule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.modules[h]; ok {
		return m, nil
	}
	sh, ok := s.shaders[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, h)
	}
	m, err := dev.CreateShaderModule(sh.Key(), sh.Source())
	if err != nil {
		return nil, fmt.Errorf("shader: failed to compile %s: %w", sh.Key(), err)
	}
	common.Logger().Debug("shader module compiled", "shader", sh.Key())
	s.modules[h] = m
	return m, nil
}

func (s *store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shaders)
}

func (s *store) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, m := range s.modules {
		m.Release()
		delete(s.modules, h)
	}
}
