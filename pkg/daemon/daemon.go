// Package daemon runs the vbatt daemon: it owns the battery instance,
// serves the control API on a unix socket, materializes the attribute
// files and fans change events out to observers.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pterodyne/linux-userspace-battery/pkg/announce"
	"github.com/pterodyne/linux-userspace-battery/pkg/battery"
	"github.com/pterodyne/linux-userspace-battery/pkg/config"
	"github.com/pterodyne/linux-userspace-battery/pkg/events"
	"github.com/pterodyne/linux-userspace-battery/pkg/metrics"
	"github.com/pterodyne/linux-userspace-battery/pkg/sysfs"
)

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config. Changes to the attribute directory
	// or MQTT settings take effect after a restart.
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	hub := events.NewHub()

	// The notifier runs after a write committed and outside the battery
	// lock, so reading the snapshot back here is safe.
	var batt *battery.State
	batt = battery.New(battery.NotifierFunc(func() {
		snap := batt.Snapshot()
		metrics.NotificationsTotal.Inc()
		hub.Publish(events.BatteryChanged, events.BatteryChangedEvent{
			VoltageMicrovolts: snap.VoltageMicrovolts,
			CapacityPercent:   snap.CapacityPercent,
			Status:            snap.Status.String(),
			Ts:                time.Now().Unix(),
		})
	}))

	attrs := sysfs.NewAttrs(conf.Name())
	attrs.Attach(batt)
	primeGauges(batt.Snapshot())
	logrus.WithField("name", conf.Name()).Info("virtual battery registered")

	allowNonRootAccess := conf.AllowNonRootAccess() || allowNonRoot

	tree := sysfs.NewTree(attrs, conf.AttrDir(), allowNonRootAccess)
	if err := tree.Create(); err != nil {
		logrus.Fatalf("failed to create attribute files: %v", err)
	}
	logrus.WithField("dir", tree.Dir()).Info("attribute files created")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- tree.Watch(ctx)
	}()

	go followChanges(ctx, hub, tree)

	if broker := conf.MQTTBroker(); broker != "" {
		announcer, err := announce.New(broker, conf.MQTTClientID(), conf.MQTTTopicPrefix(), hub)
		if err != nil {
			// The daemon is useful without a broker, so keep going.
			logrus.Errorf("mqtt announcements disabled: %v", err)
		} else {
			go announcer.Run(ctx)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Handler: NewServer(attrs, hub, conf).Routes(),
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if allowNonRootAccess {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancelShutdown()

	logrus.Info("stopping attribute watcher")
	cancel()
	if err := <-watchDone; err != nil {
		logrus.Errorf("attribute watcher failed: %v", err)
	}

	// Detach before removing files: late writers get ENODEV, exactly what
	// a disappearing device would produce.
	attrs.Detach()
	hub.Close()
	logrus.Info("virtual battery unregistered")

	if err := tree.Remove(); err != nil {
		logrus.Errorf("failed to remove attribute files: %v", err)
	}
	logrus.Info("attribute files removed")

	logrus.Info("exiting")
	return nil
}
