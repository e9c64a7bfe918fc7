package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"storefront/internal/checkout"
	"storefront/internal/controllers/http"
	"storefront/internal/infra"
	mmysql "storefront/internal/infra/mysql"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/notify"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/services"
	"storefront/internal/settings"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	repo := mysqlrepo.NewOrderRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         os.Getenv("REDIS_HOST") + ":6379",
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	source := settings.NewRedisSource(redisClient)
	dispatcher := notify.NewDispatcher(source)

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "storefront.orders")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	service := services.NewOrderService(repo, dispatcher, publisher)
	service.SetRedisClient(redisClient)

	manager := checkout.NewManager(source, service)

	var catalog infra.CatalogClientInterface
	if base := os.Getenv("CATALOG_SERVICE_URL"); base != "" {
		catalog = infra.NewCatalogClient(base, 2*time.Second)
	}

	handler := http.NewHandler(manager, service, catalog)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting storefront service on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
