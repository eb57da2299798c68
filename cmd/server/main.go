package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/inkwell/internal/config"
	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/handler"
	"github.com/forgo/inkwell/internal/jobs"
	"github.com/forgo/inkwell/internal/middleware"
	"github.com/forgo/inkwell/internal/repository"
	"github.com/forgo/inkwell/internal/service"
	"github.com/forgo/inkwell/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	recoveryRepo := repository.NewRecoveryTokenRepository(db)
	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
		TokenRepo:  tokenRepo,
	})

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})

	permissionService := service.NewPermissionService(service.PermissionServiceConfig{
		GroupRepo: groupRepo,
		GrantRepo: grantRepo,
		Resources: []service.ResourceDecl{
			{App: "blog", Resource: "post", Actions: []string{"create", "read", "update", "delete", "list"}},
			{App: "blog", Resource: "category", Actions: []string{"create", "read", "update", "delete", "list"}},
		},
		// Published content is world-readable
		Anonymous: []string{"blog.post.read", "blog.post.list"},
	})

	// Reconcile the built-in roles on every start so declared permission
	// sets survive registry changes
	builtinRoles := map[string][]string{
		"Authors": {"blog.post.*", "blog.category.*"},
		"Editors": {"blog.post.read", "blog.post.update", "blog.post.list"},
	}
	for name, codes := range builtinRoles {
		if _, err := permissionService.SyncGroupPermissions(ctx, name, codes); err != nil {
			slog.Error("failed to sync built-in role", slog.String("group", name), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	userService := service.NewUserService(service.UserServiceConfig{
		UserRepo:     userRepo,
		GroupRepo:    groupRepo,
		TokenService: tokenService,
	})

	profileService := service.NewProfileService(service.ProfileServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})

	// Recovery mail goes to the log unless real delivery is configured
	var mailer service.Mailer = &service.LogMailer{}
	recoveryService := service.NewRecoveryService(service.RecoveryServiceConfig{
		UserRepo:     userRepo,
		RecoveryRepo: recoveryRepo,
		TokenService: tokenService,
		Mailer:       mailer,
		TokenTTL:     cfg.Recovery.TokenTTL,
		BaseURL:      cfg.Recovery.BaseURL,
	})

	postService := service.NewPostService(service.PostServiceConfig{
		PostRepo: postRepo,
	})

	categoryService := service.NewCategoryService(categoryRepo)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100,
		Window: time.Minute,
		Burst:  20,
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Expired refresh and recovery tokens get swept hourly
	tokenCleanup := jobs.NewTokenCleanup(tokenService, recoveryService, time.Hour)
	tokenCleanup.Start()
	defer tokenCleanup.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, recoveryService)
	userHandler := handler.NewUserHandler(userService)
	profileHandler := handler.NewProfileHandler(profileService)
	postHandler := handler.NewPostHandler(postService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	permissionHandler := handler.NewPermissionHandler(permissionService)
	healthHandler := handler.NewHealthHandler(db)

	// Middleware chains
	auth := middleware.Auth(authService)
	optionalAuth := middleware.OptionalAuth(authService)
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.AdminOnly()(h))
	}
	permit := func(code string, h http.HandlerFunc) http.Handler {
		return auth(middleware.RequirePermission(permissionService, code)(h))
	}
	permitPublic := func(code string, h http.HandlerFunc) http.Handler {
		return optionalAuth(middleware.RequirePermission(permissionService, code)(h))
	}

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /v1/auth/forgot", authHandler.Forgot)
	mux.HandleFunc("POST /v1/auth/recover/{token}", authHandler.Recover)

	// Auth endpoints (protected)
	mux.Handle("POST /v1/auth/logout", auth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /v1/auth/me", auth(http.HandlerFunc(authHandler.Me)))

	// Profile endpoints (self-service)
	mux.Handle("PATCH /v1/profile", auth(http.HandlerFunc(profileHandler.Update)))
	mux.Handle("POST /v1/profile/password", auth(http.HandlerFunc(profileHandler.ChangePassword)))

	// User management endpoints (admin)
	mux.Handle("GET /v1/users", admin(userHandler.List))
	mux.Handle("POST /v1/users", admin(userHandler.Create))
	mux.Handle("GET /v1/users/{id}", admin(userHandler.Get))
	mux.Handle("PATCH /v1/users/{id}", admin(userHandler.Update))
	mux.Handle("DELETE /v1/users/{id}", admin(userHandler.Delete))
	mux.Handle("GET /v1/users/{id}/grants", admin(permissionHandler.ListUserGrants))

	// Group and grant endpoints (admin)
	mux.Handle("GET /v1/groups", admin(permissionHandler.ListGroups))
	mux.Handle("GET /v1/groups/{name}", admin(permissionHandler.GetGroup))
	mux.Handle("PUT /v1/groups/{name}/permissions", admin(permissionHandler.SyncGroup))
	mux.Handle("POST /v1/grants", admin(permissionHandler.CreateGrant))

	// Post endpoints. Reads are open to anonymous callers; writes go
	// through group permissions and per-record grants.
	mux.Handle("GET /v1/posts", permitPublic("blog.post.list", postHandler.List))
	mux.Handle("GET /v1/posts/all", admin(postHandler.ListAll))
	mux.Handle("GET /v1/posts/{id}", permitPublic("blog.post.read", postHandler.Get))
	mux.Handle("POST /v1/posts", permit("blog.post.create", postHandler.Create))
	mux.Handle("PATCH /v1/posts/{id}", permit("blog.post.update", postHandler.Update))
	mux.Handle("DELETE /v1/posts/{id}", permit("blog.post.delete", postHandler.Delete))

	// Category endpoints
	mux.Handle("GET /v1/categories", permit("blog.category.list", categoryHandler.List))
	mux.Handle("POST /v1/categories", permit("blog.category.create", categoryHandler.Create))
	mux.Handle("GET /v1/categories/{id}", permit("blog.category.read", categoryHandler.Get))
	mux.Handle("PATCH /v1/categories/{id}", permit("blog.category.update", categoryHandler.Update))
	mux.Handle("DELETE /v1/categories/{id}", permit("blog.category.delete", categoryHandler.Delete))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
