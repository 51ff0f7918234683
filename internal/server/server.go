package server

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"collabboard-backend/internal/ai"
	"collabboard-backend/internal/auth"
	"collabboard-backend/internal/config"
	"collabboard-backend/internal/cursor"
	"collabboard-backend/internal/handler"
	"collabboard-backend/internal/middleware"
	"collabboard-backend/internal/model"
	"collabboard-backend/internal/presence"
	"collabboard-backend/internal/store"
)

// Server Fiber 서버 래퍼
type Server struct {
	app            *fiber.App
	cfg            *config.Config
	db             *gorm.DB
	rdb            *redis.Client
	authHandler    *handler.AuthHandler
	boardHandler   *handler.BoardHandler
	objectHandler  *handler.ObjectHandler
	boardWSHandler *handler.BoardWSHandler
	aiHandler      *handler.AIHandler
	healthHandler  *handler.HealthHandler
	boardMw        *middleware.BoardMiddleware
	jwtManager     *auth.JWTManager
}

// New 새 서버 인스턴스 생성
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "CollabBoard API",
		ServerHeader:          "Fiber",
		StrictRouting:         false,
		CaseSensitive:         true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		Prefork:               false, // WebSocket과 호환성 문제로 비활성화
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		BodyLimit:             5 * 1024 * 1024, // 5MB
		DisableStartupMessage: false,
	})

	// Auth 초기화
	jwtManager := auth.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	googleAuth := auth.NewGoogleAuthenticator(cfg.Auth.GoogleClientID)

	// 객체 동기화 계층
	objectStore := store.New(store.NewGormRepository(db))

	// 커서/프레즌스 (Redis)
	cursors := cursor.NewManager(rdb, cfg.Board.StaleAfter)
	presences := presence.NewManager(rdb, cfg.Board.StaleAfter)

	// AI 파이프라인
	var aiClient *ai.Client
	if cfg.AI.APIKey != "" {
		aiClient = ai.NewClient(cfg.AI)
		log.Printf("✅ AI pipeline configured (model: %s)", cfg.AI.Model)
	} else {
		log.Println("ℹ️ AI_API_KEY not set (AI commands will be disabled)")
	}
	aiExecutor := ai.NewExecutor(objectStore)

	boardMw := middleware.NewBoardMiddleware(db)

	return &Server{
		app:            app,
		cfg:            cfg,
		db:             db,
		rdb:            rdb,
		authHandler:    handler.NewAuthHandler(db, jwtManager, googleAuth, cfg.Auth.SecureCookie),
		boardHandler:   handler.NewBoardHandler(db),
		objectHandler:  handler.NewObjectHandler(objectStore),
		boardWSHandler: handler.NewBoardWSHandler(objectStore, cursors, presences, rdb, cfg),
		aiHandler:      handler.NewAIHandler(aiClient, aiExecutor, objectStore, boardMw),
		healthHandler:  handler.NewHealthHandler(db, rdb),
		boardMw:        boardMw,
		jwtManager:     jwtManager,
	}
}

// SetupMiddleware 미들웨어 설정
func (s *Server) SetupMiddleware() {
	// 패닉 복구
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// 로깅
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
	}))

	// CORS
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowOrigins,
		AllowHeaders:     s.cfg.CORS.AllowHeaders,
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
}

// SetupRoutes 라우트 설정
func (s *Server) SetupRoutes() {
	// 헬스체크 엔드포인트
	s.app.Get("/health", s.healthHandler.Check)
	s.app.Get("/health/live", s.healthHandler.Liveness)
	s.app.Get("/health/ready", s.healthHandler.Readiness)

	// Rate Limiter (인증 엔드포인트용 - Brute Force 방지)
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})

	// Auth 라우트 그룹
	authGroup := s.app.Group("/auth")
	authGroup.Post("/google", authLimiter, s.authHandler.GoogleLogin)
	authGroup.Post("/register", authLimiter, s.authHandler.Register)
	authGroup.Post("/login", authLimiter, s.authHandler.Login)
	authGroup.Post("/refresh", authLimiter, s.authHandler.RefreshToken)
	authGroup.Post("/logout", auth.AuthMiddleware(s.jwtManager), s.authHandler.Logout)
	authGroup.Get("/me", auth.AuthMiddleware(s.jwtManager), s.authHandler.GetMe)

	// Board 라우트 그룹 (인증 필요)
	boardGroup := s.app.Group("/api/boards", auth.AuthMiddleware(s.jwtManager))
	boardGroup.Post("/", s.boardHandler.CreateBoard)
	boardGroup.Get("/", s.boardHandler.GetMyBoards)
	boardGroup.Get("/:id", s.boardMw.RequireMembership(), s.boardHandler.GetBoard)
	boardGroup.Post("/:id/join", s.boardHandler.JoinBoard)

	// Object 라우트 (보드 하위, 멤버 필수)
	objectGroup := s.app.Group("/api/boards/:boardId/objects",
		auth.AuthMiddleware(s.jwtManager), s.boardMw.RequireMembership())
	objectGroup.Get("/", s.objectHandler.GetObjects)
	objectGroup.Post("/", s.objectHandler.CreateObject)
	objectGroup.Post("/bulk", s.objectHandler.CreateObjectsBulk)
	objectGroup.Patch("/bulk", s.objectHandler.UpdateObjectsBulk)
	objectGroup.Delete("/bulk", s.objectHandler.DeleteObjectsBulk)
	objectGroup.Post("/duplicate", s.objectHandler.DuplicateObjects)
	objectGroup.Post("/marquee", s.objectHandler.MarqueeSelect)
	objectGroup.Patch("/:objectId", s.objectHandler.UpdateObject)
	objectGroup.Delete("/:objectId", s.objectHandler.DeleteObject)

	// AI 명령 엔드포인트
	s.app.Post("/api/ai/command", auth.AuthMiddleware(s.jwtManager), s.aiHandler.Command)

	// WebSocket 업그레이드 체크 미들웨어
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket 보드 엔드포인트 (JWT + 멤버십 검증 후 업그레이드)
	s.app.Get("/ws/boards/:boardId", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// 토큰 추출: 쿠키 우선, 쿼리 파라미터 허용 (헤더를 싣지 못하는 클라이언트)
		token := c.Cookies("access_token")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		claims, err := s.jwtManager.ValidateAccessToken(token)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		boardID := c.Params("boardId")
		if boardID == "" {
			return c.SendStatus(fiber.StatusBadRequest)
		}

		if !s.boardMw.IsBoardMember(boardID, claims.UserID) {
			return c.SendStatus(fiber.StatusForbidden)
		}

		// 프로필 이미지 조회 (커서/프레즌스 표시용)
		var user model.User
		s.db.Select("profile_img").First(&user, claims.UserID)
		profileImg := ""
		if user.ProfileImg != nil {
			profileImg = *user.ProfileImg
		}

		c.Locals("boardID", boardID)
		c.Locals("userID", claims.UserID)
		c.Locals("nickname", claims.Nickname)
		c.Locals("profileImg", profileImg)

		return c.Next()
	}, websocket.New(s.boardWSHandler.HandleWebSocket, websocket.Config{
		ReadBufferSize:  s.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: s.cfg.WebSocket.WriteBufferSize,
	}))
}

// Start 서버 시작 (Graceful Shutdown 지원)
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Fatalf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 CollabBoard API starting on %s", s.cfg.Server.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost%s/ws/boards/:boardId", s.cfg.Server.Port)

	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown 서버 종료
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(30 * time.Second)
}
