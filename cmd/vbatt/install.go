package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pterodyne/linux-userspace-battery/pkg/config"
	daemonutils "github.com/pterodyne/linux-userspace-battery/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install vbatt (system-wide)",
		GroupID: gInstallation,
		Long: `Install the vbatt daemon as a systemd service (system-wide).

This makes vbatt run in the background and automatically start on boot. You must run this command as root.

By default, only root is allowed to talk to the vbatt daemon. If you want non-root users, i.e., you, to drive the battery without sudo, use the --allow-non-root-access flag.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the vbatt daemon.")
			} else {
				logrus.Info("only root is allowed to access the vbatt daemon.")
			}

			err = daemonutils.Install()
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %v. Are you root?", err)
			}

			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("systemd will use the current binary (%s) at startup, so please do not move it. Once it is moved or deleted, run ``vbatt install'' again.\n", exePath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access the vbatt daemon.")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	keepConfig := false

	cmd := &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall vbatt (system-wide)",
		GroupID: gInstallation,
		Long: `Uninstall the vbatt daemon from systemd (system-wide).

This stops vbatt and removes the service unit.

You must run this command as root.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			err := daemonutils.Uninstall()
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			if !keepConfig {
				if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
					logrus.Errorf("failed to remove config file: %v", err)
				}
			}

			logrus.Infof("uninstallation succeeded")

			return nil
		},
	}

	cmd.Flags().BoolVar(&keepConfig, "keep-config", false, "Keep the config file around for a later reinstall.")

	return cmd
}
