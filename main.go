package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"whoiskit/middleware"
	"whoiskit/pkg/logger"
	"whoiskit/providers"
	"whoiskit/routes"

	"whoiskit/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logFile *lumberjack.Logger

// setupLogFile 初始化日志切割，并把切割器接到gin的默认输出
func setupLogFile() {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("警告: 无法创建日志目录: %v", err)
	}

	logFile = &lumberjack.Logger{
		Filename:   fmt.Sprintf("logs/server_%s.log", time.Now().Format("2006-01-02")),
		MaxSize:    100,  // 每个日志文件最大大小，单位为MB
		MaxBackups: 30,   // 保留的旧日志文件最大数量
		MaxAge:     90,   // 保留旧日志文件的最大天数
		Compress:   true, // 是否压缩旧的日志文件
		LocalTime:  true,
	}

	gin.DefaultWriter = io.MultiWriter(os.Stdout, logFile)
}

// getPort 从环境变量读取监听端口，保证带冒号前缀
func getPort(defaultPort string) string {
	port := defaultPort
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

// getCorsConfig 从环境变量读取CORS配置
func getCorsConfig() cors.Config {
	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
		for i := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
		}
	}

	allowedMethods := []string{"GET", "POST", "OPTIONS"}
	if methods := os.Getenv("CORS_ALLOWED_METHODS"); methods != "" {
		allowedMethods = strings.Split(methods, ",")
	}

	allowedHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	if headers := os.Getenv("CORS_ALLOWED_HEADERS"); headers != "" {
		allowedHeaders = strings.Split(headers, ",")
	}

	maxAge := 12 * time.Hour
	if ageStr := os.Getenv("CORS_MAX_AGE"); ageStr != "" {
		if age, err := time.ParseDuration(ageStr); err == nil {
			maxAge = age
		}
	}

	return cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     allowedMethods,
		AllowHeaders:     allowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "X-Cache", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           maxAge,
	}
}

func main() {
	// 加载环境变量；.env不存在时继续使用进程环境
	if err := godotenv.Load(); err != nil {
		log.Printf("未找到.env文件，使用进程环境变量")
	}

	setupLogFile()
	if err := logger.Init(logger.DeriveEnvironment()); err != nil {
		log.Fatalf("日志系统初始化失败: %v", err)
	}
	defer logger.Sync()

	mainLog := logger.Module("Main")
	mainLog.Infof("启动服务，版本: %s, 环境: %s", os.Getenv("APP_VERSION"), os.Getenv("APP_ENV"))

	// 初始化Redis客户端
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		PoolSize:     100,
		MinIdleConns: 10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  5 * time.Minute,
		MaxConnAge:   30 * time.Minute,
	})

	// 初始化服务容器与端口43提供商
	numCPU := runtime.NumCPU()
	serviceContainer := services.NewServiceContainer(rdb, numCPU*2)
	serviceContainer.InitializeWhoisService(providers.NewPort43Provider(serviceContainer.WhoisClient))
	serviceContainer.InitializeHealthChecker()

	// 创建Gin引擎
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(getCorsConfig()))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.ServiceMiddleware(serviceContainer))

	routes.RegisterAPIRoutes(r, serviceContainer)

	port := getPort("8080")
	srv := &http.Server{
		Addr:           port,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// 优雅关闭
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		mainLog.Info("正在关闭服务器...")

		serviceContainer.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			mainLog.Fatalf("服务器被强制关闭: %v", err)
		}

		mainLog.Info("服务器已安全关闭")
	}()

	mainLog.Infof("服务器启动在端口%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		mainLog.Fatalf("服务器启动失败: %v", err)
	}
}
