package render_phase

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDrawFunctionNotFound is returned when a draw item references an unregistered function.
var ErrDrawFunctionNotFound = errors.New("render_phase: draw function not found")

// ErrMissingPipeline is returned by SetItemPipeline for an item without a built pipeline.
var ErrMissingPipeline = errors.New("render_phase: item has no pipeline")

// DrawFunctionID tags draw items with the function that renders them.
type DrawFunctionID uint32

// DrawFunction issues the GPU commands for one draw item.
type DrawFunction interface {
	Draw(pass *TrackedRenderPass, view View, item DrawItem) error
}

// DrawFunctionFunc adapts a plain function to the DrawFunction interface.
type DrawFunctionFunc func(pass *TrackedRenderPass, view View, item DrawItem) error

func (f DrawFunctionFunc) Draw(pass *TrackedRenderPass, view View, item DrawItem) error {
	return f(pass, view, item)
}

// RenderCommand is one step of a draw function, such as binding a group or issuing the draw.
type RenderCommand interface {
	Render(pass *TrackedRenderPass, view View, item DrawItem) error
}

// RenderCommandFunc adapts a plain function to the RenderCommand interface.
type RenderCommandFunc func(pass *TrackedRenderPass, view View, item DrawItem) error

func (f RenderCommandFunc) Render(pass *TrackedRenderPass, view View, item DrawItem) error {
	return f(pass, view, item)
}

// Commands composes render commands into a draw function that runs them in order and stops
// at the first failure.
//
// Parameters:
//   - cmds: the commands to run
//
// Returns:
//   - DrawFunction: the composed draw function
func Commands(cmds ...RenderCommand) DrawFunction {
	return DrawFunctionFunc(func(pass *TrackedRenderPass, view View, item DrawItem) error {
		for _, cmd := range cmds {
			if err := cmd.Render(pass, view, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetItemPipeline binds the item's pipeline.
var SetItemPipeline RenderCommand = RenderCommandFunc(func(pass *TrackedRenderPass, _ View, item DrawItem) error {
	if item.Pipeline == nil || item.Pipeline.RenderPipeline() == nil {
		return fmt.Errorf("%w: entity %s", ErrMissingPipeline, item.Entity)
	}
	pass.SetPipeline(item.Pipeline.RenderPipeline())
	return nil
})

// drawFunctions is the implementation of the DrawFunctions interface.
type drawFunctions struct {
	mu    sync.RWMutex
	fns   []DrawFunction
	names map[string]DrawFunctionID
}

// DrawFunctions is the registry of draw functions of a render context. Ids are assigned in
// registration order.
type DrawFunctions interface {
	// Add registers a function under a name. Registering an existing name replaces the
	// function and keeps its id.
	//
	// Parameters:
	//   - name: the unique name
	//   - fn: the draw function
	//
	// Returns:
	//   - DrawFunctionID: the id to tag draw items with
	Add(name string, fn DrawFunction) DrawFunctionID

	// ID looks up the id registered under a name.
	//
	// Parameters:
	//   - name: the registered name
	//
	// Returns:
	//   - DrawFunctionID: the id
	//   - bool: whether the name is registered
	ID(name string) (DrawFunctionID, bool)

	// Get returns the function for an id.
	//
	// Parameters:
	//   - id: the draw function id
	//
	// Returns:
	//   - DrawFunction: the function
	//   - error: ErrDrawFunctionNotFound for an unknown id
	Get(id DrawFunctionID) (DrawFunction, error)

	// Len returns the number of registered functions.
	Len() int
}

var _ DrawFunctions = &drawFunctions{}

// NewDrawFunctions creates an empty registry.
func NewDrawFunctions() DrawFunctions {
	return &drawFunctions{names: make(map[string]DrawFunctionID)}
}

func (d *drawFunctions) Add(name string, fn DrawFunction) DrawFunctionID {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.names[name]; ok {
		d.fns[id] = fn
		return id
	}
	id := DrawFunctionID(len(d.fns))
	d.fns = append(d.fns, fn)
	d.names[name] = id
	return id
}

func (d *drawFunctions) ID(name string) (DrawFunctionID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.names[name]
	return id, ok
}

func (d *drawFunctions) Get(id DrawFunctionID) (DrawFunction, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(id) >= len(d.fns) {
		return nil, fmt.Errorf("%w: %d", ErrDrawFunctionNotFound, id)
	}
	return d.fns[id], nil
}

func (d *drawFunctions) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.fns)
}
