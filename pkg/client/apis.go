package client

import (
	"encoding/json"
	"io"

	pkgerrors "github.com/pkg/errors"

	"github.com/pterodyne/linux-userspace-battery/pkg/battery"
	"github.com/pterodyne/linux-userspace-battery/pkg/config"
)

// SetVoltage writes raw voltage text, microvolts with auto-detected base.
// The daemon's confirmation message is returned on success.
func (c *Client) SetVoltage(raw string) (string, error) {
	ret, err := c.Put("/voltage", raw)
	if err != nil {
		return "", err
	}
	return unquote(ret), nil
}

// SetCapacity writes raw capacity text, a percentage from 0 to 100.
func (c *Client) SetCapacity(raw string) (string, error) {
	ret, err := c.Put("/capacity", raw)
	if err != nil {
		return "", err
	}
	return unquote(ret), nil
}

// SetStatus writes raw status text. Unrecognized words are accepted and
// stored as Unknown.
func (c *Client) SetStatus(raw string) (string, error) {
	ret, err := c.Put("/status", raw)
	if err != nil {
		return "", err
	}
	return unquote(ret), nil
}

// GetState returns a consistent snapshot of the battery.
func (c *Client) GetState() (*battery.Snapshot, error) {
	ret, err := c.Get("/state")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery state")
	}
	var snap battery.Snapshot
	if err := json.Unmarshal([]byte(ret), &snap); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery state")
	}
	return &snap, nil
}

// GetProperty returns one property rendered as sysfs text, e.g.
// "12000000" for voltage_now or "Not charging" for status.
func (c *Client) GetProperty(name string) (string, error) {
	ret, err := c.Get("/properties/" + name)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get property %s", name)
	}
	return unquote(ret), nil
}

// GetUevent returns the uevent rendering of the battery, one
// POWER_SUPPLY_* pair per line.
func (c *Client) GetUevent() (string, error) {
	ret, err := c.Get("/uevent")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get uevent")
	}
	return ret, nil
}

// GetConfig returns the daemon's current configuration.
func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}
	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

// GetVersion returns the daemon's version string.
func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get daemon version")
	}
	return unquote(ret), nil
}

// Events subscribes to the daemon's change-event stream. The caller reads
// SSE frames from the returned body and closes it when done.
func (c *Client) Events() (io.ReadCloser, error) {
	return c.Stream("/events")
}

// unquote strips the JSON string encoding from a response body. Handlers
// answer with JSON-encoded strings, which read poorly when echoed to a
// terminal verbatim.
func unquote(body string) string {
	var s string
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return body
	}
	return s
}
