package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pterodyne/linux-userspace-battery/pkg/version"
)

// NewVersionCommand .
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

// NewSetCommand .
func NewSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Write battery values",
		GroupID: gBasic,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "voltage [microvolts]",
			Aliases: []string{"voltage-uv"},
			Short:   "Set battery voltage in microvolts",
			Long: `Set battery voltage in microvolts.

The value is an unsigned 64-bit integer. The base is auto-detected, so
12000000, 0xb71b00 and 055706600 all work. A trailing newline is fine.`,
			RunE: func(_ *cobra.Command, args []string) error {
				raw, err := rawArg(args, "voltage")
				if err != nil {
					return err
				}

				ret, err := apiClient.SetVoltage(raw)
				if err != nil {
					return fmt.Errorf("failed to set voltage: %v", err)
				}

				logrus.Infof("daemon responded: %s", ret)

				return nil
			},
		},
		&cobra.Command{
			Use:   "capacity [percent]",
			Short: "Set battery capacity in percent",
			Long: `Set battery capacity in percent.

This is a percentage from 0 to 100. Out-of-range values are rejected, so
the unset marker (-1) can never be written back.`,
			RunE: func(_ *cobra.Command, args []string) error {
				raw, err := rawArg(args, "capacity")
				if err != nil {
					return err
				}

				ret, err := apiClient.SetCapacity(raw)
				if err != nil {
					return fmt.Errorf("failed to set capacity: %v", err)
				}

				logrus.Infof("daemon responded: %s", ret)

				return nil
			},
		},
		&cobra.Command{
			Use:   "status [word]",
			Short: "Set battery charging status",
			Long: `Set battery charging status.

Recognized words are Charging, Discharging, Full and "Not charging",
matched case-insensitively. Anything else is accepted but stored as
Unknown, just like the kernel power-supply class would report it.`,
			RunE: func(_ *cobra.Command, args []string) error {
				if len(args) == 0 {
					return fmt.Errorf("invalid number of arguments")
				}
				// "Not charging" may arrive as two arguments when unquoted.
				raw := strings.Join(args, " ")

				ret, err := apiClient.SetStatus(raw)
				if err != nil {
					return fmt.Errorf("failed to set status: %v", err)
				}

				logrus.Infof("daemon responded: %s", ret)

				return nil
			},
		},
	)

	return cmd
}

// NewGetCommand .
func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get",
		Short:   "Read battery properties",
		GroupID: gBasic,
	}

	properties := []struct {
		use     string
		aliases []string
		attr    string
		short   string
	}{
		{"voltage", []string{"voltage-now"}, "voltage_now", "Print voltage in microvolts"},
		{"capacity", nil, "capacity", "Print capacity in percent (-1 until first write)"},
		{"status", nil, "status", "Print charging status"},
	}

	for _, p := range properties {
		p := p
		cmd.AddCommand(&cobra.Command{
			Use:     p.use,
			Aliases: p.aliases,
			Short:   p.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				text, err := apiClient.GetProperty(p.attr)
				if err != nil {
					return fmt.Errorf("failed to get %s: %v", p.use, err)
				}

				cmd.Println(text)

				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "uevent",
		Short: "Print the kernel-style uevent rendering",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := apiClient.GetUevent()
			if err != nil {
				return fmt.Errorf("failed to get uevent: %v", err)
			}

			cmd.Print(text)

			return nil
		},
	})

	return cmd
}
