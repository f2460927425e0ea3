package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pterodyne/linux-userspace-battery/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		Name:               ptr.To("vbatt"),
		AttrDir:            ptr.To("/run/vbatt"),
		AllowNonRootAccess: ptr.To(false),
		// MQTT announcements stay off until a broker is configured.
		MQTTBroker:      ptr.To(""),
		MQTTTopicPrefix: ptr.To("vbatt"),
		MQTTClientID:    ptr.To("vbatt"),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	Name               *string `json:"name,omitempty"`
	AttrDir            *string `json:"attrDir,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
	MQTTBroker         *string `json:"mqttBroker,omitempty"`
	MQTTTopicPrefix    *string `json:"mqttTopicPrefix,omitempty"`
	MQTTClientID       *string `json:"mqttClientId,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		Name:               ptr.To(c.Name()),
		AttrDir:            ptr.To(c.AttrDir()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		MQTTBroker:         ptr.To(c.MQTTBroker()),
		MQTTTopicPrefix:    ptr.To(c.MQTTTopicPrefix()),
		MQTTClientID:       ptr.To(c.MQTTClientID()),
	}

	return rawConfig, nil
}

func (f *File) Name() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var name string

	if f.c.Name != nil {
		name = *f.c.Name
	} else {
		name = *defaultFileConfig.Name
	}

	return name
}

func (f *File) AttrDir() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var dir string

	if f.c.AttrDir != nil {
		dir = *f.c.AttrDir
	} else {
		dir = *defaultFileConfig.AttrDir
	}

	return dir
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var allowNonRootAccess bool

	if f.c.AllowNonRootAccess != nil {
		allowNonRootAccess = *f.c.AllowNonRootAccess
	} else {
		allowNonRootAccess = *defaultFileConfig.AllowNonRootAccess
	}

	return allowNonRootAccess
}

func (f *File) MQTTBroker() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var broker string

	if f.c.MQTTBroker != nil {
		broker = *f.c.MQTTBroker
	} else {
		broker = *defaultFileConfig.MQTTBroker
	}

	return broker
}

func (f *File) MQTTTopicPrefix() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var prefix string

	if f.c.MQTTTopicPrefix != nil {
		prefix = *f.c.MQTTTopicPrefix
	} else {
		prefix = *defaultFileConfig.MQTTTopicPrefix
	}

	return prefix
}

func (f *File) MQTTClientID() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var clientID string

	if f.c.MQTTClientID != nil {
		clientID = *f.c.MQTTClientID
	} else {
		clientID = *defaultFileConfig.MQTTClientID
	}

	return clientID
}

func (f *File) SetName(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Name = &s
}

func (f *File) SetAttrDir(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AttrDir = &s
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

func (f *File) SetMQTTBroker(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MQTTBroker = &s
}

func (f *File) SetMQTTTopicPrefix(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MQTTTopicPrefix = &s
}

func (f *File) SetMQTTClientID(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MQTTClientID = &s
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}
	configString := string(b)

	if strings.TrimSpace(configString) == "" {
		// If the file is empty, return the empty config.
		// Do not make f.c a nil.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"name":               f.Name(),
		"attrDir":            f.AttrDir(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"mqttBroker":         f.MQTTBroker(),
		"mqttTopicPrefix":    f.MQTTTopicPrefix(),
		"mqttClientId":       f.MQTTClientID(),
	}
}
