package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"edulift/config"
	"edulift/internal/cron"
	"edulift/internal/database/mongodb/repository"
	"edulift/internal/service"
	"edulift/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
)

type RuntimeInfo struct {
	Env       string        `json:"env"`
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	GoVersion string        `json:"go_version"`
	StartAt   time.Time     `json:"start_at"`
	Uptime    time.Duration `json:"uptime"`
}

type App struct {
	conf          *config.Configuration
	logger        *zap.Logger
	cronSrv       *cron.Cron
	Router        *gin.Engine
	httpServer    *http.Server
	healthService *service.HealthService
	mongoRepo     *repository.MongoDBRepository
	trace         *telemetry.Trace

	startAt time.Time   // 程式啟動時間（非環境變數）
	appInfo RuntimeInfo // 版本/環境快照（來源 = conf.App）
}

// newHttpServer 開啟壓縮時以 gzhttp 包住 gin
func newHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) *http.Server {
	var handler http.Handler = router
	if conf.App.CompressionEnabled {
		handler = gzhttp.GzipHandler(router)
	}
	return &http.Server{
		Addr:              ":" + strconv.FormatUint(uint64(conf.App.Port), 10),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newApp(
	conf *config.Configuration,
	logger *zap.Logger,
	router *gin.Engine,
	httpServer *http.Server,
	healthService *service.HealthService,
	mongoRepo *repository.MongoDBRepository,
	trace *telemetry.Trace,
	cronSrv *cron.Cron,
) *App {
	startAt := time.Now()
	app := &App{
		conf:          conf,
		logger:        logger,
		Router:        router,
		httpServer:    httpServer,
		healthService: healthService,
		mongoRepo:     mongoRepo,
		trace:         trace,
		cronSrv:       cronSrv,
		startAt:       startAt,
		appInfo: RuntimeInfo{
			Env:       conf.App.Env,
			Name:      conf.App.ServiceName(),
			Version:   conf.App.Version,
			GoVersion: runtime.Version(),
			StartAt:   startAt,
		},
	}
	// /version：回傳 JSON（含 uptime）
	router.GET("/version", func(c *gin.Context) {
		resp := app.appInfo
		resp.Uptime = time.Since(app.startAt)
		c.JSON(http.StatusOK, resp)
	})
	return app
}

// Run 建索引、啟動 cron 與 HTTP server；server 結束時的錯誤寫入 serveErr
func (a *App) Run(serveErr chan<- error) error {
	info := a.appInfo
	a.logger.Info("app runtime info",
		zap.String("env", info.Env),
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("go_version", info.GoVersion),
		zap.Time("start_at", info.StartAt),
	)

	// 1) 索引：逐一建立，失敗只記 warning，不中止啟動
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.conf.MongoDB.TimeoutSeconds)*time.Second)
	userRepo := a.mongoRepo.User()
	failures := userRepo.EnsureIndexes(ctx)
	cancel()
	a.logger.Info("users indexes ensured",
		zap.Int("requested", len(userRepo.IndexModels())),
		zap.Int("failed", len(failures)),
	)

	// 2) 啟動 cron
	if err := a.cronSrv.Run(); err != nil {
		return err
	}
	a.logger.Info("cron server started")

	// 3) HTTP server
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.httpServer.Addr))
		serveErr <- a.httpServer.ListenAndServe()
	}()
	a.healthService.SetReady(true)
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.healthService != nil {
		a.healthService.SetReady(false)
	}

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		a.logger.Info("http server has been stop")
	}
	if a.cronSrv != nil {
		if err := a.cronSrv.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
		a.logger.Info("cron server has been stop")
	}
	if err := a.trace.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
