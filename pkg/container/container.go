package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"shopcart-backend/internal/config"
	infraCache "shopcart-backend/internal/infrastructure/cache"
	"shopcart-backend/internal/infrastructure/database"
	"shopcart-backend/pkg/cache"
	"shopcart-backend/pkg/jwt"
	"shopcart-backend/pkg/logger"

	cartHandler "shopcart-backend/internal/domains/cart/handler"
	cartRepo "shopcart-backend/internal/domains/cart/repository"
	cartService "shopcart-backend/internal/domains/cart/service"
	couponHandler "shopcart-backend/internal/domains/coupon/handler"
	couponRepo "shopcart-backend/internal/domains/coupon/repository"
	couponService "shopcart-backend/internal/domains/coupon/service"
	productHandler "shopcart-backend/internal/domains/product/handler"
	productRepo "shopcart-backend/internal/domains/product/repository"
	productService "shopcart-backend/internal/domains/product/service"
	userHandler "shopcart-backend/internal/domains/user/handler"
	userRepo "shopcart-backend/internal/domains/user/repository"
	userService "shopcart-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph. Everything in it is
// a singleton built once at startup.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager

	// Repositories
	UserRepo    userRepo.UserRepository
	ProductRepo productRepo.ProductRepository
	CouponRepo  couponRepo.CouponRepository
	CartRepo    cartRepo.CartRepository

	// Services
	UserService    userService.UserServiceInterface
	ProductService productService.ProductServiceInterface
	CouponService  couponService.CouponServiceInterface
	CartService    cartService.CartServiceInterface

	// Handlers
	UserHandler        *userHandler.UserHandler
	ProductHandler     *productHandler.ProductHandler
	CartHandler        *cartHandler.CartHandler
	CouponAdminHandler *couponHandler.AdminHandler
	CouponHandler      *couponHandler.PublicHandler
}

// NewContainer builds the dependency graph in order: config, then
// infrastructure, then repositories, services and handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	logger.Init(cfg.App.Environment)
	log.Printf("[Container] Config loaded (environment: %s)", cfg.App.Environment)

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("[Container] Database connected")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		// Redis failure is not fatal; cached reads fall back to the
		// database.
		if err := rc.Connect(context.Background()); err != nil {
			log.Printf("[Container] Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("[Container] Redis connected")
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("[Container] Initialized")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.ProductRepo = productRepo.NewPostgresRepository(pool)
	c.CouponRepo = couponRepo.NewPostgresRepository(pool)
	c.CartRepo = cartRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	calc := couponService.NewDiscountCalculator()
	validator := couponService.NewCouponValidator(c.CouponRepo, calc)

	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.ProductService = productService.NewProductService(c.ProductRepo)
	c.CouponService = couponService.NewCouponService(c.CouponRepo, validator, c.Cache)
	c.CartService = cartService.NewCartService(
		c.CartRepo,
		c.ProductRepo,
		c.CouponRepo,
		validator,
		calc,
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.ProductHandler = productHandler.NewProductHandler(c.ProductService)
	c.CartHandler = cartHandler.NewCartHandler(c.CartService)
	c.CouponAdminHandler = couponHandler.NewAdminHandler(c.CouponService)
	c.CouponHandler = couponHandler.NewPublicHandler(c.CouponService, c.CartService)
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Close()
		log.Println("[Container] Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("[Container] Failed to close Redis: %v", err)
			} else {
				log.Println("[Container] Redis connections closed")
			}
		}
	}
}
