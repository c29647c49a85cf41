package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finsight/gateway/internal/auth"
	"github.com/finsight/gateway/internal/clients/analysis"
	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/db"
	httpx "github.com/finsight/gateway/internal/http"
	"github.com/finsight/gateway/internal/mailer"
	"github.com/finsight/gateway/internal/observability"
	"github.com/finsight/gateway/internal/proxy"
	"github.com/finsight/gateway/internal/session"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	pool, err := db.NewPool(cfg.DBURL, observability.NewPgxTracer(prom))

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	schemaCtx, cancelSchema := config.WithTimeout(10 * time.Second)

	if err := db.EnsureSchema(schemaCtx, pool); err != nil {
		cancelSchema()
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}
	cancelSchema()

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	defer rdb.Close()

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	cancelPing()

	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)

	var mail mailer.Mailer = mailer.NewLogMailer()

	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		log.Warn("no SMTP host configured, one-time codes go to the log")
	}

	minter := auth.NewTokenMinter(cfg.ServiceSecret, 2*time.Minute)
	analysisClient := analysis.NewClient(cfg.AnalysisBaseURL, minter)

	analysisProxy, err := proxy.New(cfg.AnalysisBaseURL, minter, log)

	if err != nil {
		log.Error("bad analysis upstream url", "err", err)
		os.Exit(1)
	}

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "finsight-gateway", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(3 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	pingDB := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}

	pingRedis := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()
		return rdb.Ping(ctx).Err()
	}

	router := httpx.NewRouter(log, httpx.Deps{
		Cfg:      cfg,
		Pool:     pool,
		Sessions: sessions,
		Mail:     mail,
		Analysis: analysisClient,
		Proxy:    analysisProxy,
		Prom:     prom,
		PingDB:   pingDB,
		PingRed:  pingRedis,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
