// Package provider resolves multi-tenant provider configuration into the
// identities and settings used to build one reconciliation source per
// configured instance.
package provider

// Identity names one configured provider instance. The derived name is used
// both as the scheduler task prefix and as the catalog sink location key.
type Identity struct {
	Kind       string `json:"kind" yaml:"kind"`
	InstanceID string `json:"instanceId,omitempty" yaml:"instanceId,omitempty"`
}

// NewIdentity returns the identity for a provider kind and optional instance id.
func NewIdentity(kind, instanceID string) Identity {
	return Identity{Kind: kind, InstanceID: instanceID}
}

// Name returns Kind, suffixed with ":InstanceID" for multi-instance configurations.
func (i Identity) Name() string {
	if i.InstanceID == "" {
		return i.Kind
	}
	return i.Kind + ":" + i.InstanceID
}

// TaskID returns the id under which the refresh task is registered.
func (i Identity) TaskID() string {
	return i.Name() + ":refresh"
}

// String implements fmt.Stringer.
func (i Identity) String() string {
	return i.Name()
}
