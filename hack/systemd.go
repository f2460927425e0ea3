// Package hack holds static assets that get baked into the binary.
package hack

// SystemdUnitTemplate is the service unit written by `vbatt install`.
// The /path/to/vbatt placeholder is replaced with the resolved executable
// path at install time.
const SystemdUnitTemplate = `[Unit]
Description=vbatt userspace virtual battery daemon
After=local-fs.target

[Service]
Type=simple
ExecStart=/path/to/vbatt daemon
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`
