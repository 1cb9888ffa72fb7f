package app

import (
	"context"
	"courseware_backend/internal/config"
	"courseware_backend/internal/controller"
	"courseware_backend/internal/repository"
	"courseware_backend/internal/service"
	"courseware_backend/pkg/configwatcher"
	"courseware_backend/pkg/database"
	"courseware_backend/pkg/logger"
	"courseware_backend/pkg/monitoring"
	"courseware_backend/pkg/security"
	"courseware_backend/pkg/tracing"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	courseware *repository.CoursewareRepository
	ancestry   *repository.AncestryRepository
	scenario   *repository.ScenarioRepository
	attempt    *repository.AttemptRepository
	progress   *repository.ProgressRepository
	scope      *repository.StudentScopeRepository
	competency *repository.CompetencyRepository
	history    *repository.CoursewareHistoryRepository
	record     *repository.EvaluationRecordRepository
}

type services struct {
	engine  *service.Engine
	adapter *service.EvaluationServiceAdapter
}

type controllers struct {
	evaluation *controller.EvaluationController
	progress   *controller.ProgressController
	scope      *controller.ScopeController
	competency *controller.CompetencyController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		courseware: repository.NewCoursewareRepository(db),
		ancestry:   repository.NewAncestryRepository(db, rdb, cfg.Evaluation.AncestryCacheTTL),
		scenario:   repository.NewScenarioRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		progress:   repository.NewProgressRepository(db),
		scope:      repository.NewStudentScopeRepository(db),
		competency: repository.NewCompetencyRepository(db),
		history:    repository.NewCoursewareHistoryRepository(db),
		record:     repository.NewEvaluationRecordRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.engine = service.NewEngine(service.Stores{
		Scenarios:  repos.scenario,
		Attempts:   repos.attempt,
		Progresses: repos.progress,
		Structure:  repos.courseware,
		Scopes:     repos.scope,
		Competency: repos.competency,
		History:    repos.history,
		Ancestry:   repos.ancestry,
		Records:    repos.record,
	}, cfg.Evaluation.RollupMaxDepth)

	// 评估后端可随配置热切换
	s.adapter = service.NewEvaluationServiceAdapter(cfg.Evaluation, s.engine.Pipeline)
	a.RegisterConfigCallback(s.adapter.Reload)

	return s
}

func (a *App) initControllers(s *services, repos *repositories) *controllers {
	return &controllers{
		evaluation: controller.NewEvaluationController(s.adapter, s.engine.Test),
		progress:   controller.NewProgressController(repos.progress),
		scope:      controller.NewScopeController(repos.scope),
		competency: controller.NewCompetencyController(repos.competency),
		health:     controller.NewHealthController(a.DB, a.Redis, s.adapter.Mode),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 初始化依赖并组装路由
func NewApp(cfg *config.Config, migrate bool) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	if migrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	// redis 只用作祖先链缓存, 不可用时降级为直接查库
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, ancestry cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
		app.tracer = tp
	}

	repos := app.initRepositories(db, rdb, cfg)
	app.services = app.initServices(repos, cfg)
	controllers := app.initControllers(app.services, repos)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	return app, nil
}

func (a *App) reloadConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.ConfigPath != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.ConfigPath, a.reloadConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// 等待后台能力汇总结束
	a.services.engine.Competency.Wait()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	return nil
}
