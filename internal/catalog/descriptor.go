package catalog

import "fmt"

// DispatchKind tells the host which calling convention to use for a module.
type DispatchKind int

const (
	// DispatchBridge is the asynchronous, message-based legacy bridge.
	DispatchBridge DispatchKind = iota
	// DispatchTurbo is a synchronous native binding resolved on demand.
	DispatchTurbo
	// DispatchCxx is a module implemented directly against the host's C++ runtime.
	DispatchCxx
)

var dispatchNames = map[DispatchKind]string{
	DispatchBridge: "bridge",
	DispatchTurbo:  "turbo",
	DispatchCxx:    "cxx",
}

// String returns the manifest spelling of the dispatch kind.
func (k DispatchKind) String() string {
	if s, ok := dispatchNames[k]; ok {
		return s
	}
	return fmt.Sprintf("DispatchKind(%d)", int(k))
}

// ParseDispatchKind converts a manifest value such as "turbo" into a DispatchKind.
func ParseDispatchKind(s string) (DispatchKind, error) {
	for k, name := range dispatchNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown dispatch kind %q: must be 'bridge', 'turbo', or 'cxx'", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k DispatchKind) MarshalText() ([]byte, error) {
	if _, ok := dispatchNames[k]; !ok {
		return nil, fmt.Errorf("unknown dispatch kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DispatchKind) UnmarshalText(b []byte) error {
	parsed, err := ParseDispatchKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Descriptor is the static metadata for one registrable module.
type Descriptor struct {
	// Name is the dispatch key and the name the host displays.
	Name string `json:"name"`
	// ClassName is the name of the implementation behind Name. It defaults
	// to Name when a manifest does not set it.
	ClassName           string       `json:"className"`
	CanOverrideExisting bool         `json:"canOverrideExisting"`
	NeedsEagerInit      bool         `json:"needsEagerInit"`
	HasConstants        bool         `json:"hasConstants"`
	Dispatch            DispatchKind `json:"dispatch"`
}

// IsCxxModule reports whether the host must call into the module through its C++ runtime.
func (d Descriptor) IsCxxModule() bool {
	return d.Dispatch == DispatchCxx
}

// IsTurboModule reports whether the module uses the synchronous native binding.
func (d Descriptor) IsTurboModule() bool {
	return d.Dispatch == DispatchTurbo
}
