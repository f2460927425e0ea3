package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/pterodyne/linux-userspace-battery/pkg/battery"
	"github.com/pterodyne/linux-userspace-battery/pkg/config"
)

type statusJSON struct {
	Battery       statusBatteryJSON `json:"battery"`
	Configuration statusConfigJSON  `json:"configuration"`
}

type statusBatteryJSON struct {
	VoltageMicrovolts uint64  `json:"voltageMicrovolts"`
	VoltageVolts      float64 `json:"voltageVolts"`
	CapacityPercent   int     `json:"capacityPercent"`
	CapacityKnown     bool    `json:"capacityKnown"`
	Status            string  `json:"status"`
}

type statusConfigJSON struct {
	Name               string `json:"name"`
	AttrDir            string `json:"attrDir"`
	AllowNonRootAccess bool   `json:"allowNonRootAccess"`
	MQTTBroker         string `json:"mqttBroker,omitempty"`
	MQTTTopicPrefix    string `json:"mqttTopicPrefix,omitempty"`
	MQTTClientID       string `json:"mqttClientId,omitempty"`
}

func printStatusJSON(cmd *cobra.Command, data *statusData) error {
	conf := config.NewFileFromConfig(data.config, "")
	snap := data.snapshot

	out := statusJSON{
		Battery: statusBatteryJSON{
			VoltageMicrovolts: snap.VoltageMicrovolts,
			VoltageVolts:      float64(snap.VoltageMicrovolts) / 1e6,
			CapacityPercent:   snap.CapacityPercent,
			CapacityKnown:     snap.CapacityPercent != battery.CapacityUnset,
			Status:            snap.Status.String(),
		},
		Configuration: statusConfigJSON{
			Name:               conf.Name(),
			AttrDir:            conf.AttrDir(),
			AllowNonRootAccess: conf.AllowNonRootAccess(),
			MQTTBroker:         conf.MQTTBroker(),
			MQTTTopicPrefix:    conf.MQTTTopicPrefix(),
			MQTTClientID:       conf.MQTTClientID(),
		},
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
