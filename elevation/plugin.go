package elevation

import "github.com/odvcencio/elevation/state"

// Plugin builds an extension from the raw store and the bound API.
type Plugin interface {
	Create(store *state.Store, api *Elevation) any
}

// PluginFunc adapts a function into a Plugin.
type PluginFunc func(store *state.Store, api *Elevation) any

// Create calls f.
func (f PluginFunc) Create(store *state.Store, api *Elevation) any {
	if f == nil {
		return nil
	}
	return f(store, api)
}

// Named pairs a plugin with the name its extension is registered under.
type Named struct {
	Name   string
	Plugin Plugin
}

// Use creates p and registers its extension under name, replacing any
// extension already registered there.
func (e *Elevation) Use(name string, p Plugin) any {
	if p == nil {
		return nil
	}
	ext := p.Create(e.store, e)
	e.mu.Lock()
	if _, exists := e.plugins[name]; exists {
		e.logger.Warn("plugin replaced", "name", name)
	} else {
		e.names = append(e.names, name)
	}
	e.plugins[name] = ext
	e.mu.Unlock()
	return ext
}

// Plugin returns the extension registered under name.
func (e *Elevation) Plugin(name string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ext, ok := e.plugins[name]
	return ext, ok
}

// Plugins returns the registered names in registration order.
func (e *Elevation) Plugins() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.names...)
}

// PluginAs returns the extension registered under name as a T.
func PluginAs[T any](e *Elevation, name string) (T, bool) {
	ext, ok := e.Plugin(name)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := ext.(T)
	return typed, ok
}
