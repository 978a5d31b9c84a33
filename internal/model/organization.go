package model

// Organization is a Meraki dashboard organization
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label is the section heading used in rendered reports, e.g. "Acme - 123456".
func (o Organization) Label() string {
	if o.Name == "" {
		return o.ID
	}
	return o.Name + " - " + o.ID
}
