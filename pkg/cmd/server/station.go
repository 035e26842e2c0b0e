package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	nats "github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Aslhee/MobileCafeServer/config"
	"github.com/Aslhee/MobileCafeServer/pkg/accounting"
	"github.com/Aslhee/MobileCafeServer/pkg/api"
	"github.com/Aslhee/MobileCafeServer/pkg/events"
	"github.com/Aslhee/MobileCafeServer/pkg/model"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
	"github.com/Aslhee/MobileCafeServer/pkg/storage/memory"
	"github.com/Aslhee/MobileCafeServer/pkg/storage/postgres"
)

// seedDeviceID is provisioned at startup when the store is empty, so a
// fresh install shows one station on the console right away.
const seedDeviceID = "mobile_01"

type stationServer struct {
	cfg    *config.Config
	quitCh chan bool
	doneCh chan bool

	nc    *nats.Conn
	store storage.Interface
	errCh chan error
}

func init() {
	formatter := &logrus.TextFormatter{
		FullTimestamp: true,
	}
	logrus.SetFormatter(formatter)

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	log.SetLevel(log.InfoLevel)
}

func newStationServer(cfg *config.Config) (*stationServer, error) {
	s := &stationServer{
		cfg:    cfg,
		quitCh: make(chan bool),
		doneCh: make(chan bool),
		errCh:  make(chan error, 1),
	}

	nc, err := nats.Connect(cfg.NATSServerURL,
		nats.DrainTimeout(10*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("nats error: ", err)
			s.errCh <- err
		}),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			log.Warn("nats connection lost")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("nats connection reestablished")
		}))
	if err != nil {
		return nil, err
	}
	s.nc = nc

	store, err := newStore(cfg)
	if err != nil {
		nc.Close()
		return nil, err
	}
	s.store = store

	return s, nil
}

// newStore picks PostgreSQL when a database URL is configured, otherwise
// the volatile in-memory store for development setups.
func newStore(cfg *config.Config) (storage.Interface, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("No database URL configured, using in-memory store")
		return memory.NewStore(), nil
	}

	db, err := sqlx.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return postgres.NewStore(db), nil
}

func (s *stationServer) Serve() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(logger())

	// Wire the accounting service and the API with one NATS publisher
	pub := events.NewPublisher(s.nc)
	acct := accounting.NewService(s.store, pub)

	// Register API endpoints
	handler := api.NewHandler(s.nc, s.store, acct, pub)
	handler.RegisterRoutes(e)

	s.seedDevice()

	go func() {
		log.WithFields(log.Fields{
			"host": s.cfg.BindHost,
			"port": s.cfg.BindPort,
		}).Info("Starting server")

		if err := e.Start(fmt.Sprintf("%s:%d", s.cfg.BindHost, s.cfg.BindPort)); err != nil {
			e.Logger.Info("Shutting down the server")
		}
	}()

	// Wait until receiving the quit signal
	<-s.quitCh
	log.Info("Shutdown signal received")

	// Create a 10 second timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the echo web server
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}

	// We've done!
	s.doneCh <- true
}

// seedDevice provisions the first station if the store has never seen it.
func (s *stationServer) seedDevice() {
	if _, err := s.store.Devices().FindByDeviceID(seedDeviceID); err == nil {
		return
	} else if err != storage.ErrNotFound {
		log.Error("failed to check for seed device: ", err)
		return
	}

	m := &model.Device{
		DeviceID: seedDeviceID,
		Name:     "Station 1",
		Status:   model.StatusLocked,
	}
	if err := s.store.Devices().Create(m); err != nil {
		log.Error("failed to create seed device: ", err)
		return
	}

	log.Infof("Provisioned seed device %s", seedDeviceID)
}

// Logger returns a middleware that logs HTTP requests.
func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			var err error
			if err = next(c); err != nil {
				c.Error(err)
			}
			stop := time.Now()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			reqSizeStr := req.Header.Get(echo.HeaderContentLength)
			if reqSizeStr == "" {
				reqSizeStr = "0"
			}
			reqSize, err := strconv.ParseInt(reqSizeStr, 10, 0)
			if err != nil {
				reqSize = -1
			}
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			}

			log.WithFields(log.Fields{
				"timestamp":     stop.Format(time.RFC3339),
				"id":            id,
				"remote_ip":     c.RealIP(),
				"host":          req.Host,
				"method":        req.Method,
				"uri":           req.RequestURI,
				"protocol":      req.Proto,
				"user_agent":    req.UserAgent(),
				"status":        res.Status,
				"status_text":   http.StatusText(res.Status),
				"referer":       req.Referer(),
				"error":         errMsg,
				"bytes_in":      reqSize,
				"bytes_out":     res.Size,
				"latency":       stop.Sub(start).Nanoseconds(),
				"latency_human": stop.Sub(start).String(),
			}).Infof("%s %s %s %d %s", req.Method, req.RequestURI, req.Proto,
				res.Status, strconv.FormatInt(res.Size, 10))

			return err
		}
	}
}

func (s *stationServer) Shutdown() {
	if s.nc != nil {
		s.nc.Drain()
	}

	// Send the quit signal to the server.Serve() routine
	s.quitCh <- true

	// Wait up to 10 seconds
	select {
	case <-s.doneCh:
		log.Info("Shutdown server successful")
	case <-time.After(10 * time.Second):
		log.Error("Shutdown server failed")
	}
}

func RunServeStation(c *config.Config) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		s, err := newStationServer(c)
		if err != nil {
			log.Error("failed to create new server instance: ", err)
			os.Exit(1)
		}

		go s.Serve()

		// Wait for interrupt signal to gracefully shutdown the server
		quitCh := make(chan os.Signal, 1)
		signal.Notify(quitCh, os.Interrupt)
		<-quitCh

		// Shutdown the server
		s.Shutdown()
	}
}
