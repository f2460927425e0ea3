package daemon

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pterodyne/linux-userspace-battery/pkg/config"
	"github.com/pterodyne/linux-userspace-battery/pkg/events"
	"github.com/pterodyne/linux-userspace-battery/pkg/sysfs"
	"github.com/pterodyne/linux-userspace-battery/pkg/version"
)

// Server carries the daemon's wiring into the HTTP handlers. Handlers
// never reach for package state, everything arrives through here.
type Server struct {
	attrs *sysfs.Attrs
	hub   *events.Hub
	conf  config.Config
}

// NewServer wires a server around an attribute set, an event hub and the
// effective configuration.
func NewServer(attrs *sysfs.Attrs, hub *events.Hub, conf config.Config) *Server {
	return &Server{attrs: attrs, hub: hub, conf: conf}
}

// Routes builds the gin engine with every endpoint attached.
func (s *Server) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.PUT("/voltage", s.setVoltage)
	router.PUT("/capacity", s.setCapacity)
	router.PUT("/status", s.setStatus)
	router.GET("/state", s.getState)
	router.GET("/properties/:name", s.getProperty)
	router.GET("/uevent", s.getUevent)
	router.GET("/config", s.getConfig)
	router.GET("/version", s.getVersion)
	router.GET("/events", s.streamEvents)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func (s *Server) setVoltage(c *gin.Context) {
	s.storeAttr(c, sysfs.AttrSetVoltage)
}

func (s *Server) setCapacity(c *gin.Context) {
	s.storeAttr(c, sysfs.AttrSetCapacity)
}

func (s *Server) setStatus(c *gin.Context) {
	s.storeAttr(c, sysfs.AttrSetStatus)
}

// storeAttr feeds the raw request body through the attribute layer and
// translates the errno convention into HTTP: ENODEV becomes 503, EINVAL
// becomes 400.
func (s *Server) storeAttr(c *gin.Context, attr string) {
	payload, err := c.GetRawData()
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	n, err := s.attrs.Store(attr, payload)
	if err != nil {
		status := httpStatusForErrno(sysfs.Errno(err))
		c.IndentedJSON(status, err.Error())
		_ = c.AbortWithError(status, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"attr":     attr,
		"consumed": n,
	}).Infof("stored %s", attr)

	// Read the value back so the writer sees what actually landed, e.g.
	// garbage status text coming back as Unknown.
	readAttr := readAttrFor(attr)
	value, err := s.attrs.Show(readAttr)
	if err != nil {
		c.IndentedJSON(http.StatusCreated, "stored")
		return
	}
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("%s is now %s", readAttr, value))
}

func (s *Server) getState(c *gin.Context) {
	snap, err := s.attrs.Snapshot()
	if err != nil {
		c.IndentedJSON(http.StatusServiceUnavailable, err.Error())
		_ = c.AbortWithError(http.StatusServiceUnavailable, err)
		return
	}
	c.IndentedJSON(http.StatusOK, snap)
}

func (s *Server) getProperty(c *gin.Context) {
	name := c.Param("name")
	// uevent renders the whole supply, not a single property; it has its
	// own endpoint.
	if name == sysfs.AttrUevent || sysfs.IsWriteAttr(name) {
		err := pkgerrors.Wrapf(sysfs.ErrUnknownAttribute, "get %s", name)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	text, err := s.attrs.Show(name)
	if err != nil {
		status := httpStatusForErrno(sysfs.Errno(err))
		c.IndentedJSON(status, err.Error())
		_ = c.AbortWithError(status, err)
		return
	}
	c.IndentedJSON(http.StatusOK, text)
}

func (s *Server) getUevent(c *gin.Context) {
	text, err := s.attrs.Show(sysfs.AttrUevent)
	if err != nil {
		status := httpStatusForErrno(sysfs.Errno(err))
		c.IndentedJSON(status, err.Error())
		_ = c.AbortWithError(status, err)
		return
	}
	c.String(http.StatusOK, text+"\n")
}

func (s *Server) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(s.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (s *Server) getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// streamEvents feeds change events to the client as SSE frames until it
// disconnects or the hub shuts down.
func (s *Server) streamEvents(c *gin.Context) {
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
