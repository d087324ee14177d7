package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"market-chat-service/internal/auth"
	"market-chat-service/internal/config"
	"market-chat-service/internal/db"
	"market-chat-service/internal/handlers"
	"market-chat-service/internal/middleware"
	"market-chat-service/internal/observability"
	"market-chat-service/internal/presence"
	"market-chat-service/internal/repositories"
	"market-chat-service/internal/telemetry"
	"market-chat-service/internal/views"
	"market-chat-service/internal/ws"
)

const serviceName = "market-chat-service"

func main() {
	cfg := config.Load()

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.Environment, cfg.TracingEnabled)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	tracker, err := presence.NewRedisTracker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer tracker.Close()

	publisher := observability.NewPublisher(cfg.AmqpURL, cfg.AuditExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)

	audit := telemetry.NewAuditEmitter(publisher, "audit.market_chat", serviceName, cfg.Environment)

	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	accountRepo := repositories.NewAccountRepo(database)
	statementRepo := repositories.NewStatementRepo(database)
	responseRepo := repositories.NewResponseRepo(database)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	viewBuilder := views.NewBuilder(accountRepo, statementRepo)

	hub := ws.NewHub()
	notifier := ws.NewNotifier(hub, messageRepo)

	routerOpts := ws.RouterOptions{
		NotifyRecipientOnMessage:  cfg.NotifyRecipientOnMessage,
		PresenceLeaveOnDisconnect: cfg.PresenceLeaveOnDisconnect,
	}
	conversationWS := ws.NewConversationWSHandler(hub, conversationRepo, messageRepo, tracker, verifier, viewBuilder, notifier, routerOpts)
	notificationWS := ws.NewNotificationWSHandler(hub, verifier, notifier)

	conversationHandler := handlers.NewConversationHandler(conversationRepo, messageRepo, accountRepo, statementRepo, viewBuilder, notifier, audit)
	statementHandler := handlers.NewStatementHandler(statementRepo, responseRepo)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/conversations", authMiddleware, conversationHandler.ListConversations)
	router.POST("/conversations/start", authMiddleware, conversationHandler.StartConversation)
	router.GET("/conversations/:conversation_name/messages", authMiddleware, conversationHandler.GetMessages)
	router.POST("/conversations/:conversation_name/read", authMiddleware, conversationHandler.MarkRead)
	router.GET("/notifications/unread", authMiddleware, conversationHandler.GetUnreadCount)

	router.GET("/statements/:statement_id", authMiddleware, statementHandler.GetStatement)
	router.GET("/statements/:statement_id/responses", authMiddleware, statementHandler.ListStatementResponses)
	router.GET("/responses/:response_id", authMiddleware, statementHandler.GetResponse)

	router.GET("/ws/conversations/:conversation_name", conversationWS.Handle)
	router.GET("/ws/notifications", notificationWS.Handle)

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
