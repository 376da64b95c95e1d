package api

import (
	"log"

	"github.com/campus-agora/market-svc/config"
	"github.com/campus-agora/market-svc/infra/queue"
	"github.com/campus-agora/market-svc/internal/api/rest/handlers"
	"github.com/campus-agora/market-svc/internal/cache"
	"github.com/campus-agora/market-svc/internal/domain"
	"github.com/campus-agora/market-svc/internal/helper"
	"github.com/campus-agora/market-svc/internal/interfaces"
	"github.com/campus-agora/market-svc/internal/repository"
	"github.com/campus-agora/market-svc/internal/services"
	"github.com/campus-agora/market-svc/pkg/cloudinary"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New()

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	// One fixed id so concurrent replicas serialize the migration.
	const migrateLockID int64 = 20260901

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.University{},
		&domain.UniversityDetail{},
		&domain.Item{},
		&domain.ItemUniversity{},
		&domain.UserUniversity{},
		&domain.VerificationToken{},
		&domain.PasswordResetToken{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)

	redisCache := cache.New(cfg.RedisAddr)

	var up interfaces.Uploader
	if cld, err := cloudinary.New(); err != nil {
		log.Printf("cloudinary init error: %v (image uploads disabled)", err)
	} else {
		up = cloudinary.NewCloudinaryUploader(cld)
	}

	authHelper := helper.SetupAuth(cfg.AccessSecret)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	itemRepo := repository.NewItemRepository(db)

	// ---------- Services ----------
	universitySvc := services.NewUniversityService(universityRepo)
	itemSvc := services.NewItemService(itemRepo, universityRepo, up, redisCache)
	userSvc := services.NewUserService(
		userRepo,
		tokenRepo,
		universitySvc,
		universityRepo,
		kafkaProducer,
		up,
		authHelper,
	)

	// ---------- Handlers ----------
	handlers.NewAuthHandler(userSvc).SetupRoutes(app)
	handlers.NewItemHandler(itemSvc, userSvc, authHelper).SetupRoutes(app)
	handlers.NewSyncHandler(itemSvc, userSvc, universitySvc, authHelper).SetupRoutes(app)
	handlers.NewUniversityHandler(universitySvc, itemSvc).SetupRoutes(app)
	handlers.NewUserHandler(userSvc, itemSvc).SetupRoutes(app)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}
