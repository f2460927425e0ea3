package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pterodyne/linux-userspace-battery/pkg/battery"
	"github.com/pterodyne/linux-userspace-battery/pkg/config"
)

type statusData struct {
	snapshot *battery.Snapshot
	config   *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	snap, err := apiClient.GetState()
	if err != nil {
		return nil, fmt.Errorf("failed to get battery state: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		snapshot: snap,
		config:   conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	jsonOutput := false

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the virtual battery",
		Long:    `Get the virtual battery state and the daemon configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Get various info first.
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			if jsonOutput {
				return printStatusJSON(cmd, data)
			}

			conf := config.NewFileFromConfig(data.config, "")
			snap := data.snapshot

			// Battery state.
			cmd.Println(bold("Battery state:"))

			cmd.Printf("  Voltage: %s (%s)\n",
				bold("%.6f V", float64(snap.VoltageMicrovolts)/1e6),
				bold("%d µV", snap.VoltageMicrovolts))

			if snap.CapacityPercent == battery.CapacityUnset {
				cmd.Printf("  Capacity: %s\n", bold("not reported yet"))
				cmd.Println("    No valid capacity has been written since the battery appeared.")
			} else {
				cmd.Printf("  Capacity: %s\n", bold("%d%%", snap.CapacityPercent))
			}

			cmd.Printf("  Status: %s\n", statusText(snap.Status))

			cmd.Println()

			// Config.
			cmd.Println(bold("Daemon configuration:"))
			cmd.Printf("  Power-supply name: %s\n", bold("%s", conf.Name()))
			cmd.Printf("  Attribute directory: %s\n", bold("%s", conf.AttrDir()))
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
			if conf.MQTTBroker() != "" {
				cmd.Printf("  MQTT announcements: %s (%s)\n", bool2Text(true), conf.MQTTBroker())
				cmd.Printf("  MQTT topic prefix: %s\n", bold("%s", conf.MQTTTopicPrefix()))
			} else {
				cmd.Printf("  MQTT announcements: %s\n", bool2Text(false))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON.")

	return cmd
}

// statusText colors a charging status the way battery indicators usually
// do: green while gaining, red while draining.
func statusText(s battery.Status) string {
	switch s {
	case battery.Charging:
		return color.New(color.Bold, color.FgGreen).Sprint(s.String())
	case battery.Discharging:
		return color.New(color.Bold, color.FgRed).Sprint(s.String())
	case battery.Full:
		return color.New(color.Bold, color.FgGreen).Sprint(s.String())
	case battery.NotCharging:
		return color.New(color.Bold, color.FgYellow).Sprint(s.String())
	default:
		return bold("%s", s.String())
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
