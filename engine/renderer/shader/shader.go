package shader

import (
	"errors"
	"fmt"
)

// Handle identifies a shader asset in a Store. Plugins declare their handles as constants.
type Handle uint64

// Default entry point names a render shader is expected to expose.
const (
	DefaultVertexEntryPoint   = "vertex"
	DefaultFragmentEntryPoint = "fragment"
)

// ErrMissingEntryPoint is returned by NewShader when the source declares no @vertex entry point.
var ErrMissingEntryPoint = errors.New("shader: missing entry point")

// shader is the implementation of the Shader interface.
type shader struct {
	key                string
	source             string
	vertexEntryPoint   string
	fragmentEntryPoint string
	bindings           []Binding
}

// Shader defines the interface for a loaded WGSL render shader. It exposes the shader's
// key, source code, the entry points the pipeline stages use and the resource bindings
// the source declares.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the vertex entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function, or an empty string
	// when the source declares no fragment stage.
	//
	// Returns:
	//   - string: the fragment entry point name
	FragmentEntryPoint() string

	// Bindings returns every @group/@binding declaration in the source, ordered by group
	// then binding.
	//
	// Returns:
	//   - []Binding: the declared resource bindings
	Bindings() []Binding
}

var _ Shader = &shader{}

// NewShader parses WGSL source into a Shader. The entry points are read from the
// @vertex and @fragment attributes in the source.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
//   - error: ErrMissingEntryPoint if the source has no @vertex function
func NewShader(key, source string) (Shader, error) {
	s := &shader{
		key:                key,
		source:             source,
		vertexEntryPoint:   parseEntryPoint(source, stageVertex),
		fragmentEntryPoint: parseEntryPoint(source, stageFragment),
		bindings:           parseBindings(source),
	}
	if s.vertexEntryPoint == "" {
		return nil, fmt.Errorf("%w: %s has no @vertex function", ErrMissingEntryPoint, key)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}
