// Package server assembles `lovenest serve`: the record store backend, the
// services and their routes, the live hub and the HTTP server around them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"lovenest/auth"
	"lovenest/bucketlist"
	"lovenest/cinema"
	"lovenest/config"
	"lovenest/dreams"
	"lovenest/export"
	"lovenest/gate"
	"lovenest/live"
	"lovenest/logging"
	"lovenest/middleware"
	"lovenest/milestones"
	"lovenest/moviemeta"
	"lovenest/plans"
	"lovenest/ratelim"
	"lovenest/records"
	"lovenest/routes"
	"lovenest/store"
)

type Server struct {
	cfg     config.Server
	log     logging.Logger
	store   *store.Store
	rdb     *redis.Client
	hub     *live.Hub
	bridge  *live.RedisBridge
	limiter *ratelim.RateLimiter
	handler http.Handler

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	stop      chan struct{}
}

// New opens the configured backends and builds the handler tree. Nothing
// runs until Start or ListenAndServe.
func New(ctx context.Context, cfg config.Server, log logging.Logger) (*Server, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		log:     log,
		store:   st,
		hub:     live.NewHub(log),
		limiter: ratelim.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		stop:    make(chan struct{}),
	}

	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.RedisURL != "" {
		if s.rdb, err = openRedis(ctx, cfg.RedisURL); err != nil {
			st.Close(ctx)
			return nil, err
		}
		s.bridge = live.NewRedisBridge(s.rdb, live.DefaultChannel, log)
		s.hub.SetPublisher(s.bridge)
		revoker = auth.NewRedisRevoker(s.rdb)
	}

	mediaSvc, mediaDir, err := newMedia(ctx, cfg, log)
	if err != nil {
		s.closeBackends(ctx)
		return nil, err
	}

	planSvc := plans.NewService(st.Plans, s.hub, log)
	bucketSvc := bucketlist.NewService(st.BucketList, s.hub, log)
	dreamSvc := dreams.NewService(st.Dreams, s.hub, log)
	milestoneSvc := milestones.NewService(st.Milestones, s.hub, log)
	posters := moviemeta.New(cfg.PosterURL, cfg.PosterAPIKey)
	posters.TitleParam = cfg.PosterTitleParam
	cinemaSvc := cinema.NewService(st.Cinema, posters, s.hub, log)

	s.hub.Feed(store.Plans, live.FeedOf(planSvc.List))
	s.hub.Feed(store.BucketList, live.FeedOf(bucketSvc.List))
	s.hub.Feed(store.Dreams, live.FeedOf(dreamSvc.List))
	s.hub.Feed(store.Milestones, live.FeedOf(milestoneSvc.List))
	s.hub.Feed(store.Cinema, live.FeedOf(cinemaSvc.List))

	sessions := gate.NewSessions(gate.NewChecker(cfg.Passcode, cfg.PasscodeHash), []byte(cfg.JWTSecret), cfg.SessionTTL)

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Handlers{
		Auth:       auth.NewService(sessions, revoker, log),
		Plans:      plans.NewHandler(planSvc),
		BucketList: bucketlist.NewHandler(bucketSvc),
		Dreams:     records.NewResource(dreamSvc),
		Milestones: records.NewResource(milestoneSvc),
		Cinema:     cinema.NewHandler(cinemaSvc),
		Posters:    posters,
		Hub:        s.hub,
		Media:      mediaSvc,
		MediaDir:   mediaDir,
		Export:     export.NewHandler(planSvc, milestoneSvc, log),
	}, s.limiter)

	// CORS -> security headers -> logging -> router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)
	s.handler = middleware.Logging(log)(middleware.SecurityHeaders(corsHandler))
	return s, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// Start runs the live hub, the redis bridge and the rate limiter janitor.
func (s *Server) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		go s.hub.Run()
		go s.limiter.RunJanitor(time.Minute, s.stop)
		if s.bridge != nil {
			go func() {
				if err := s.bridge.Run(ctx, s.hub); err != nil {
					s.log.Error(ctx, "redis bridge stopped", "error", err)
				}
			}()
		}
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}
	srv.RegisterOnShutdown(s.stopBackground)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "server listening", "addr", s.cfg.Addr, "store", s.cfg.Store, "media", s.cfg.Media)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Close(context.Background())
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	s.log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if cerr := s.Close(shutdownCtx); err == nil {
		err = cerr
	}
	return err
}

func (s *Server) stopBackground() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		close(s.stop)
		s.hub.Stop()
	})
}

// Close stops background work and releases the backends.
func (s *Server) Close(ctx context.Context) error {
	s.stopBackground()
	return s.closeBackends(ctx)
}

func (s *Server) closeBackends(ctx context.Context) error {
	var errs []error
	if s.rdb != nil {
		errs = append(errs, s.rdb.Close())
	}
	errs = append(errs, s.store.Close(ctx))
	return errors.Join(errs...)
}
