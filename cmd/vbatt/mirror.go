package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	hostbattery "github.com/distatus/battery"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewMirrorCommand .
func NewMirrorCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:     "mirror",
		Short:   "Copy the host battery into the virtual one",
		GroupID: gAdvanced,
		Long: `Copy the host machine's real battery readings into the virtual battery.

By default this mirrors once and exits. With --interval it keeps
mirroring at that interval until interrupted, which makes the virtual
battery track the real one.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := mirrorOnce(); err != nil {
				return err
			}
			if interval <= 0 {
				return nil
			}

			logrus.Infof("mirroring host battery every %s", interval)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				if err := mirrorOnce(); err != nil {
					// Transient host read failures should not kill the
					// loop.
					logrus.Errorf("mirror failed: %v", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0,
		"Keep mirroring at this interval, e.g. 30s. 0 mirrors once and exits.")

	return cmd
}

func mirrorOnce() error {
	batteries, err := hostbattery.GetAll()
	if err != nil {
		return fmt.Errorf("failed to read host batteries: %v", err)
	}
	if len(batteries) == 0 {
		return errors.New("no host battery found")
	}
	bat := batteries[0]

	voltage := strconv.FormatUint(uint64(bat.Voltage*1e6), 10)

	percent := 0
	if bat.Full > 0 {
		percent = int(bat.Current / bat.Full * 100)
	}
	// Some controllers report slightly above the design capacity.
	if percent > 100 {
		percent = 100
	}

	word := statusWordFor(bat.State)

	if _, err := apiClient.SetVoltage(voltage); err != nil {
		return fmt.Errorf("failed to set voltage: %v", err)
	}
	if _, err := apiClient.SetCapacity(strconv.Itoa(percent)); err != nil {
		return fmt.Errorf("failed to set capacity: %v", err)
	}
	if _, err := apiClient.SetStatus(word); err != nil {
		return fmt.Errorf("failed to set status: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"voltageMicrovolts": voltage,
		"capacityPercent":   percent,
		"status":            word,
	}).Info("mirrored host battery")

	return nil
}

// statusWordFor maps a host battery state onto the power-supply status
// words the daemon understands.
func statusWordFor(s hostbattery.State) string {
	switch s {
	case hostbattery.Charging:
		return "Charging"
	case hostbattery.Discharging:
		return "Discharging"
	case hostbattery.Full:
		return "Full"
	case hostbattery.Empty:
		// An empty battery that is not draining is idle.
		return "Not charging"
	default:
		return "Unknown"
	}
}
