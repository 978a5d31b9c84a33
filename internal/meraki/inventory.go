package meraki

import (
	"context"
	"fmt"
	"iter"
	"net/url"

	"github.com/martinsuchenak/merakilife/internal/model"
)

type organizationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// inventoryDevice is one item of /organizations/{id}/inventory/devices.
// networkId is null for units that are claimed but not in a network.
type inventoryDevice struct {
	Serial    string  `json:"serial"`
	Model     string  `json:"model"`
	NetworkID *string `json:"networkId"`
}

func (d inventoryDevice) toModel() model.Device {
	dev := model.Device{Serial: d.Serial, Model: d.Model}
	if d.NetworkID != nil && *d.NetworkID != "" {
		dev.NetworkID = *d.NetworkID
		dev.NetworkBound = true
	}
	return dev
}

// Organizations lists the organizations the API key can access
func (c *Client) Organizations(ctx context.Context) ([]model.Organization, error) {
	endpoint := fmt.Sprintf("%s/organizations?perPage=%d", c.cfg.BaseURL, c.cfg.PerPage)

	var orgs []model.Organization
	for org, err := range paginate[organizationResponse](ctx, c, endpoint) {
		if err != nil {
			return nil, &model.FetchError{Source: "organizations", Err: err}
		}
		orgs = append(orgs, model.Organization{ID: org.ID, Name: org.Name})
	}
	return orgs, nil
}

// Devices streams an organization's inventory. Iteration stops after the
// first error, which is always a *model.FetchError.
func (c *Client) Devices(ctx context.Context, orgID string) iter.Seq2[model.Device, error] {
	endpoint := fmt.Sprintf("%s/organizations/%s/inventory/devices?perPage=%d",
		c.cfg.BaseURL, url.PathEscape(orgID), c.cfg.PerPage)

	return func(yield func(model.Device, error) bool) {
		for d, err := range paginate[inventoryDevice](ctx, c, endpoint) {
			if err != nil {
				yield(model.Device{}, &model.FetchError{Source: "inventory", OrganizationID: orgID, Err: err})
				return
			}
			if !yield(d.toModel(), nil) {
				return
			}
		}
	}
}

// FetchDevices collects Devices into a slice
func (c *Client) FetchDevices(ctx context.Context, orgID string) ([]model.Device, error) {
	var devices []model.Device
	for d, err := range c.Devices(ctx, orgID) {
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}
