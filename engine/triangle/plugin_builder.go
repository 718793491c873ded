package triangle

// PluginBuilderOption is a functional option used to configure a Plugin.
type PluginBuilderOption func(*Plugin)

// WithPipelineFlags replaces the feature flags pipelines are specialized with. The sample
// count part of the key always comes from the frame, so any MSAA bits in flags are ignored.
//
// Parameters:
//   - flags: the feature flags
//
// Returns:
//   - PluginBuilderOption: a function that sets the flags
func WithPipelineFlags(flags PipelineKey) PluginBuilderOption {
	return func(p *Plugin) {
		p.flags = flags.Flags()
	}
}

// WithMaxViews sets how many views keep their bind groups between frames.
//
// Parameters:
//   - n: the number of views, at least 1
//
// Returns:
//   - PluginBuilderOption: a function that sets the view cache size
func WithMaxViews(n int) PluginBuilderOption {
	return func(p *Plugin) {
		p.maxViews = max(n, 1)
	}
}
