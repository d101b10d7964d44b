package uploadkit

import "io"

// ArchiveContentInspector is the interface for deep archive inspection
// beyond compression analysis. Implementations must be safe for concurrent
// use; the facade calls them from arbitrary request goroutines.
type ArchiveContentInspector interface {
	// Inspect walks the archive and returns an aggregate rejection or nil
	Inspect(reader io.ReaderAt, size int64) error
	// SupportedMIMETypes returns the MIME types this inspector can handle
	SupportedMIMETypes() []string
}

// InspectorRegistry manages content inspectors for different archive types
type InspectorRegistry struct {
	inspectors map[string]ArchiveContentInspector
}

// NewInspectorRegistry creates an empty inspector registry
func NewInspectorRegistry() *InspectorRegistry {
	return &InspectorRegistry{
		inspectors: make(map[string]ArchiveContentInspector),
	}
}

// DefaultInspectorRegistry returns a registry with the built-in ZIP
// content inspector registered for the MIME types it supports
func DefaultInspectorRegistry(limits SecurityLimits) *InspectorRegistry {
	registry := NewInspectorRegistry()
	inspector := NewContentInspector(limits)
	for _, mimeType := range inspector.SupportedMIMETypes() {
		registry.Register(mimeType, inspector)
	}
	return registry
}

// Register registers an inspector for a MIME type
func (r *InspectorRegistry) Register(mimeType string, inspector ArchiveContentInspector) {
	r.inspectors[mimeType] = inspector
}

// Get returns the inspector for a MIME type, or nil if none is registered
func (r *InspectorRegistry) Get(mimeType string) ArchiveContentInspector {
	return r.inspectors[mimeType]
}

// Inspect runs the inspector registered for the MIME type. A missing
// inspector is not an error; the compression analysis already ran.
func (r *InspectorRegistry) Inspect(mimeType string, reader io.ReaderAt, size int64) error {
	inspector := r.Get(mimeType)
	if inspector == nil {
		return nil
	}
	return inspector.Inspect(reader, size)
}
