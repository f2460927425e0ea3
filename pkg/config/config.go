package config

import "github.com/sirupsen/logrus"

type Config interface {
	Name() string
	AttrDir() string
	AllowNonRootAccess() bool
	MQTTBroker() string
	MQTTTopicPrefix() string
	MQTTClientID() string

	SetName(string)
	SetAttrDir(string)
	SetAllowNonRootAccess(bool)
	SetMQTTBroker(string)
	SetMQTTTopicPrefix(string)
	SetMQTTClientID(string)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	// LogrusFields renders the effective configuration for logging.
	LogrusFields() logrus.Fields
}
