package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"taskmanager/internal/config"
	"taskmanager/internal/database"
	"taskmanager/internal/handler"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
	"taskmanager/pkg/apierrors"
	"taskmanager/pkg/translator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SupportedLanguages are the languages error messages are translated into.
var SupportedLanguages = []string{translator.LanguageEn, translator.LanguageRu}

// Store is a task store that can report its own health.
type Store interface {
	service.TaskRepository
	handler.Pinger
}

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	translator.InitTranslator(translator.Config{SupportedLanguages: SupportedLanguages})

	store, db, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	taskService := service.NewTaskService(store)

	return &Server{
		Engine: NewRouter(cfg, taskService, store, zap.L()),
		DB:     db,
		Config: cfg,
	}, nil
}

func openStore(cfg *config.Config) (Store, *gorm.DB, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		zap.L().Warn("using in-memory task store, data is lost on restart")
		return repository.NewMemoryTaskRepository(), nil, nil
	case config.StorageDriverPostgres:
		db, err := database.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, err
		}
		return repository.NewTaskRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg *config.Config, tasks handler.TaskService, store handler.Pinger, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.GinZapMiddleware(logger),
		middleware.LanguageMiddleware(cfg.DefaultLanguage, SupportedLanguages),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("request_id", middleware.GetRequestID(c)))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgInternalError, middleware.GetLang(c)))
		}),
		middleware.Timeout(cfg.RequestTimeout),
	)

	RegisterRoutes(r, handler.NewTaskHandler(tasks), handler.NewHealthHandler(store))
	return r
}

func RegisterRoutes(r gin.IRouter, taskHandler *handler.TaskHandler, healthHandler *handler.HealthHandler) {
	r.GET("/health", healthHandler.CheckHealth)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	tasks := r.Group("/tasks")
	{
		tasks.GET("", taskHandler.GetAll)
		tasks.POST("", taskHandler.Create)

		tasks.GET("/search", taskHandler.Search)
		tasks.GET("/deleted", taskHandler.GetDeleted)
		tasks.GET("/due", taskHandler.GetByDueDate)
		tasks.GET("/status/:status", taskHandler.GetByStatus)
		tasks.GET("/category/:category", taskHandler.GetByCategory)

		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.PUT("/:id/restore", taskHandler.Restore)
		tasks.GET("/:id/subtasks", taskHandler.GetSubTasks)
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    ":" + s.Config.AppPort,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server running", zap.String("addr", srv.Addr), zap.String("storage", s.Config.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		zap.L().Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				zap.L().Warn("failed to close database", zap.Error(err))
			}
		}
	}

	zap.L().Info("server exited properly")
	return nil
}
