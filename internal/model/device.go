package model

// Device is one physical unit from an organization's inventory.
// Only units bound to a network count as active.
type Device struct {
	Serial       string `json:"serial"`
	Model        string `json:"model"`
	NetworkID    string `json:"network_id,omitempty"`
	NetworkBound bool   `json:"network_bound"`
}

// Active reports whether the unit is in use
func (d Device) Active() bool {
	return d.NetworkBound
}
