package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"looknest/internal/api"
	"looknest/internal/middleware"
	"looknest/internal/push"
	"looknest/internal/repository"
	"looknest/internal/service"
	"looknest/pkg/config"
	"looknest/pkg/db"
	"looknest/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 初始化配置
	if err := config.Init(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.InitLogger(config.GlobalConfig.Log.Level, config.GlobalConfig.Log.Production); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库连接
	if err := db.InitDB(); err != nil {
		logger.L.Fatal("Failed to initialize database", zap.Error(err))
	}

	// 推送层: 连接注册表 -> 分发器 -> 通知适配器
	registry := push.NewRegistry()
	dispatcher, err := push.CreateDispatcher(registry)
	if err != nil {
		logger.L.Fatal("Failed to create dispatcher", zap.Error(err))
	}
	push.StartDispatcher(dispatcher)
	defer func() {
		if err := push.CloseDispatcher(dispatcher); err != nil {
			logger.L.Error("Failed to close dispatcher", zap.Error(err))
		}
	}()
	notifier := push.NewNotifier(dispatcher)

	// 仓储与服务
	userRepo := repository.NewUserRepository()
	photoRepo := repository.NewPhotoRepository()
	commentRepo := repository.NewCommentRepository()
	followRepo := repository.NewFollowRepository()
	notificationRepo := repository.NewNotificationRepository()

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, notifier)
	photoService := service.NewPhotoService(photoRepo, commentRepo, notificationRepo, notifier)
	followService := service.NewFollowService(followRepo, userRepo, notificationRepo, notifier)
	notificationService := service.NewNotificationService(notificationRepo)

	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(userService)
	photoHandler := api.NewPhotoHandler(photoService)
	followHandler := api.NewFollowHandler(followService)
	notificationHandler := api.NewNotificationHandler(notificationService)
	wsHandler := api.NewWSHandler(registry, authService)

	// 创建Gin引擎
	r := gin.New()
	r.Use(middleware.GinZapLogger(), gin.Recovery())

	// 公开路由
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	// 推送通道公开 认证在连接内完成
	r.GET("/ws", wsHandler.HandleConnection)

	// 受保护的路由
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/users/:user_id", userHandler.GetProfile)
		protected.PUT("/users/me", userHandler.UpdateProfile)
		protected.GET("/settings", userHandler.GetSettings)
		protected.PUT("/settings", userHandler.UpdateSettings)

		protected.POST("/photos", photoHandler.Upload)
		protected.GET("/photos", photoHandler.ListPhotos)
		protected.GET("/photos/:photo_id", photoHandler.GetPhoto)
		protected.DELETE("/photos/:photo_id", photoHandler.DeletePhoto)
		protected.GET("/users/:user_id/photos", photoHandler.ListUserPhotos)

		protected.POST("/photos/:photo_id/like", photoHandler.ToggleLike)
		protected.POST("/photos/:photo_id/save", photoHandler.SavePhoto)
		protected.DELETE("/photos/:photo_id/save", photoHandler.UnsavePhoto)
		protected.GET("/saved-photos", photoHandler.ListSavedPhotos)
		protected.POST("/photos/:photo_id/comments", photoHandler.AddComment)
		protected.PUT("/comments/:comment_id", photoHandler.EditComment)
		protected.DELETE("/comments/:comment_id", photoHandler.DeleteComment)

		protected.POST("/users/:user_id/follow", followHandler.Follow)
		protected.DELETE("/users/:user_id/follow", followHandler.Unfollow)
		protected.GET("/users/:user_id/following", followHandler.Following)
		protected.GET("/users/:user_id/followers", followHandler.Followers)
		protected.GET("/follow-requests", followHandler.PendingRequests)
		protected.POST("/follow-requests/:request_id/accept", followHandler.Accept)
		protected.POST("/follow-requests/:request_id/reject", followHandler.Reject)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread", notificationHandler.UnreadCount)
		protected.POST("/notifications/:notification_id/read", notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	// 启动服务器 收到信号后优雅关闭 保证defer的资源释放执行
	addr := config.GlobalConfig.Server.Addr
	srv := &http.Server{Addr: addr, Handler: r}

	serverErr := make(chan error, 1)
	go func() {
		logger.L.Info("Starting server", zap.String("addr", addr))
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", zap.Error(err))
		}
	case sig := <-quit:
		logger.L.Info("Shutting down server", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.L.Error("Server shutdown failed", zap.Error(err))
		}
	}
}
