package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/logging"
	"taskhub/internal/repo"
	"taskhub/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type App struct {
	cfg    config.Config
	db     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg config.Config, log *logrus.Logger) (*App, error) {
	a := &App{cfg: cfg}

	db, err := newPostgres(cfg.PG)
	if err != nil {
		return nil, err
	}
	a.db = db
	log.Info("postgres connected")

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb
	log.Info("redis connected")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := migrations.Up(ctx, cfg.PG.DSN); err != nil {
		a.redis.Close()
		a.db.Close()
		return nil, err
	}
	log.Info("migrations applied")

	a.router = newRouter(cfg, log, Deps{
		Users:    repo.NewPGUserRepo(db),
		Projects: repo.NewPGProjectRepo(db),
		Tasks:    repo.NewPGTaskRepo(db),
		Subtasks: repo.NewPGSubtaskRepo(db),
		Sessions: auth.NewStore(rdb, cfg.Session.TTL.Duration()),
		Checks: map[string]Pinger{
			"postgres": db,
			"redis":    redisPinger{rdb},
		},
	})
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Server returns the HTTP server for the configured port and timeouts.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + a.cfg.HTTP.Port,
		Handler:      a.router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: a.cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  a.cfg.HTTP.IdleTimeout.Duration(),
	}
}

// Close releases the Redis client and the Postgres pool.
func (a *App) Close() error {
	var err error
	if a.redis != nil {
		if err = a.redis.Close(); err != nil {
			err = fmt.Errorf("close redis: %w", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	return err
}

func newPostgres(cfg config.PGConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

func newRouter(cfg config.Config, log *logrus.Logger, deps Deps) *gin.Engine {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logging.Middleware(log), gin.CustomRecovery(func(c *gin.Context, rec any) {
		logging.FromContext(c).WithField("panic", rec).Error("recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
	}))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", logging.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", logging.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	Setup(r, cfg, deps)
	return r
}
