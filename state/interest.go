package state

// Interest is the set of top-level keys a subscription listens to.
//
// The zero value listens to every key. Keys with no arguments listens to
// nothing, which is how a disabled reader stays registered without ever
// being called.
type Interest struct {
	keys     []string
	filtered bool
}

// AllKeys returns an Interest matching any change.
func AllKeys() Interest {
	return Interest{}
}

// Keys returns an Interest matching changes to any of keys.
func Keys(keys ...string) Interest {
	return Interest{
		keys:     append(make([]string, 0, len(keys)), keys...),
		filtered: true,
	}
}

// IsAll reports whether the interest has no filter.
func (i Interest) IsAll() bool {
	return !i.filtered
}

// List returns a copy of the filter keys, or nil for an unfiltered interest.
func (i Interest) List() []string {
	if !i.filtered {
		return nil
	}
	return append(make([]string, 0, len(i.keys)), i.keys...)
}

// Matches reports whether a change to changed should be delivered.
func (i Interest) Matches(changed []string) bool {
	if !i.filtered {
		return true
	}
	for _, key := range i.keys {
		for _, c := range changed {
			if key == c {
				return true
			}
		}
	}
	return false
}

// Equal reports whether both interests list the same keys in the same order.
func (i Interest) Equal(other Interest) bool {
	if i.filtered != other.filtered || len(i.keys) != len(other.keys) {
		return false
	}
	for idx := range i.keys {
		if i.keys[idx] != other.keys[idx] {
			return false
		}
	}
	return true
}
