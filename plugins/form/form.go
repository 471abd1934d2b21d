// Package form binds form fields to a nested mapping stored under one key.
//
// Every field write replaces the whole mapping with an updated copy, so
// readers of the form key are notified like for any other top-level change.
package form

import (
	"math"
	"strconv"

	"github.com/odvcencio/elevation/elevation"
	"github.com/odvcencio/elevation/runtime"
	"github.com/odvcencio/elevation/state"
)

// Forms creates form bindings over one Elevation.
type Forms struct {
	api *elevation.Elevation
}

// New returns a plugin creating a *Forms.
func New() elevation.Plugin {
	return elevation.PluginFunc(func(_ *state.Store, api *elevation.Elevation) any {
		return &Forms{api: api}
	})
}

// For returns the form stored under key.
func (f *Forms) For(key string) *Form {
	return &Form{api: f.api, key: key}
}

// Form is a set of fields stored as a mapping under one key.
type Form struct {
	api *elevation.Elevation
	key string
}

// Key returns the state key holding the form data.
func (f *Form) Key() string {
	return f.key
}

// Data returns a copy of the current form data.
func (f *Form) Data() state.State {
	return data(f.api.State(), f.key).Clone()
}

// Field is a binding to one form field.
type Field[T any] struct {
	form *Form
	name string
	view *elevation.View[T]
}

// Custom binds a field of any type for inst.
func Custom[T any](f *Form, inst *runtime.Instance, name string) *Field[T] {
	return &Field[T]{
		form: f,
		name: name,
		view: elevation.Elevated(f.api, inst, func(s state.State) T {
			value, _ := data(s, f.key)[name].(T)
			return value
		}, state.Keys(f.key)),
	}
}

// Text binds a string field for inst.
func (f *Form) Text(inst *runtime.Instance, name string) *Field[string] {
	return Custom[string](f, inst, name)
}

// Checked binds a boolean field for inst.
func (f *Form) Checked(inst *runtime.Instance, name string) *Field[bool] {
	return Custom[bool](f, inst, name)
}

// Name returns the field name.
func (fd *Field[T]) Name() string {
	return fd.name
}

// Value returns the field value, or the zero value when unset.
func (fd *Field[T]) Value() T {
	return fd.view.Get()
}

// OnChange writes value to the field.
func (fd *Field[T]) OnChange(value T) error {
	return fd.form.set(fd.name, value)
}

// NumberField binds a numeric field edited as text.
type NumberField struct {
	field        *Field[float64]
	valueWhenNaN float64
}

// Number binds a float64 field for inst. Input that does not parse as a
// number, or parses as NaN, is stored as valueWhenNaN.
func (f *Form) Number(inst *runtime.Instance, name string, valueWhenNaN float64) *NumberField {
	return &NumberField{
		field:        Custom[float64](f, inst, name),
		valueWhenNaN: valueWhenNaN,
	}
}

// Number returns the stored number.
func (n *NumberField) Number() float64 {
	return n.field.Value()
}

// Value returns the stored number formatted for display, or "" when unset.
func (n *NumberField) Value() string {
	if _, ok := data(n.field.view.State(), n.field.form.key)[n.field.name]; !ok {
		return ""
	}
	return strconv.FormatFloat(n.field.Value(), 'f', -1, 64)
}

// OnChange parses input and writes the result.
func (n *NumberField) OnChange(input string) error {
	value, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(value) {
		value = n.valueWhenNaN
	}
	return n.field.OnChange(value)
}

// OnSubmit returns a function that calls fn with the latest form data.
// The data is read through a binding owned by inst.
func (f *Form) OnSubmit(inst *runtime.Instance, fn func(data state.State)) func() {
	view := elevation.Elevated(f.api, inst, func(s state.State) state.State {
		return data(s, f.key)
	}, state.Keys(f.key))
	return func() {
		if fn != nil {
			fn(view.Get().Clone())
		}
	}
}

func (f *Form) set(name string, value any) error {
	_, err := f.api.Elevate()(state.Func(func(current state.State) state.State {
		next := data(current, f.key).Clone()
		if next == nil {
			next = state.State{}
		}
		next[name] = value
		return state.State{f.key: next}
	}))
	return err
}

func data(s state.State, key string) state.State {
	switch v := s[key].(type) {
	case state.State:
		return v
	case map[string]any:
		return state.State(v)
	default:
		return nil
	}
}
