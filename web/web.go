// Package web assembles the gin engine of the user center and runs it with
// its scheduled jobs.
package web

import (
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ycr/usercenter/config"
	"github.com/ycr/usercenter/logger"
	"github.com/ycr/usercenter/util/common"
	"github.com/ycr/usercenter/web/cache"
	"github.com/ycr/usercenter/web/controller"
	"github.com/ycr/usercenter/web/job"
	"github.com/ycr/usercenter/web/locale"
	"github.com/ycr/usercenter/web/middleware"
	"github.com/ycr/usercenter/web/network"
	"github.com/ycr/usercenter/web/service"
	"github.com/ycr/usercenter/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed translation/*
var i18nFS embed.FS

// Server is the HTTP API server together with its cron scheduler.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	user *controller.UserController

	settingService service.SettingService

	cron       *cron.Cron
	redisStore bool
}

func NewServer() *Server {
	return &Server{}
}

// newSessionStore builds the session backend selected by UC_SESSION_STORE.
func (s *Server) newSessionStore(secret []byte, maxAge int) (sessions.Store, error) {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	var store sessions.Store
	switch config.GetSessionStore() {
	case config.SessionStoreCookie:
		store = cookie.NewStore(secret)
	default:
		if err := cache.InitRedis(config.GetRedisAddr()); err != nil {
			return nil, err
		}
		s.redisStore = true
		redisStore := cache.NewRedisStore(cache.GetClient(), secret)
		redisStore.SetKeyPrefix(config.GetRedisKeyPrefix())
		store = redisStore
	}
	store.Options(options)
	return store, nil
}

// initRouter sets up middleware and mounts the user routes under the
// configured base path.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	webDomain, err := s.settingService.GetWebDomain()
	if err != nil {
		return nil, err
	}
	if webDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(webDomain))
	}

	engine.Use(middleware.RequestIdMiddleware())

	origins, err := s.settingService.GetAllowOrigins()
	if err != nil {
		return nil, err
	}
	if len(origins) > 0 {
		engine.Use(middleware.CORSMiddleware(origins))
	}

	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}
	sessionMaxAge, err := s.settingService.GetSessionMaxAge()
	if err != nil {
		return nil, err
	}
	store, err := s.newSessionStore(secret, sessionMaxAge*60)
	if err != nil {
		return nil, err
	}
	engine.Use(sessions.Sessions(session.CookieName, store))

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}
	engine.Use(locale.LocalizerMiddleware())

	basePath, err := s.settingService.GetBasePath()
	if err != nil {
		return nil, err
	}
	s.user = controller.NewUserController(engine.Group(basePath + "user"))

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@hourly", job.NewCheckpointJob()); err != nil {
		logger.Warning("add checkpoint job failed:", err)
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	loc, err := s.settingService.GetTimeLocation()
	if err != nil {
		return err
	}
	s.cron = cron.New(cron.WithLocation(loc))
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	certFile, err := s.settingService.GetCertFile()
	if err != nil {
		return err
	}
	keyFile, err := s.settingService.GetKeyFile()
	if err != nil {
		return err
	}
	listen, err := s.settingService.GetListen()
	if err != nil {
		return err
	}
	port, err := s.settingService.GetPort()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(listen, strconv.Itoa(port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if certFile != "" || keyFile != "" {
		if cert, err := tls.LoadX509KeyPair(certFile, keyFile); err == nil {
			cfg := &tls.Config{Certificates: []tls.Certificate{cert}}
			listener = network.NewAutoHttpsListener(listener)
			listener = tls.NewListener(listener, cfg)
			logger.Info("Web server running HTTPS on", listener.Addr())
		} else {
			logger.Error("Error loading certificates:", err)
			logger.Info("Web server running HTTP on", listener.Addr())
		}
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer common.Recover("web server")
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()
	return nil
}

// Stop shuts the server down and releases the session backend.
func (s *Server) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2, err3 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
		if errors.Is(err2, net.ErrClosed) {
			err2 = nil
		}
	}
	if s.redisStore {
		err3 = cache.Close()
		s.redisStore = false
	}
	return common.Combine(err1, err2, err3)
}
