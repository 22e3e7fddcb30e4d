package main

import (
	"context"
	"log"
	"strconv"
	"strings"

	"pitchhub/config"
	"pitchhub/db"
	"pitchhub/internal/live"
	"pitchhub/llm"
	"pitchhub/routes"
	"pitchhub/services"
	"pitchhub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.prod.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gateway := buildGateway(cfg)
	if gateway != nil {
		var names []string
		for _, p := range gateway.Providers() {
			names = append(names, p.Name())
		}
		log.Printf("LLM backends in priority order: %s", strings.Join(names, ", "))
	}
	services.InitSimulationService(cfg, gateway)

	// Connect to MongoDB using the URI from the configuration
	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	// Seed the objection catalog on first boot
	utils.SeedObjectionCatalog()

	// Redis backs message rate limiting only; the server runs without it
	if cfg.Redis.Addr != "" {
		if err := live.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Printf("Redis unavailable, rate limiting disabled: %v", err)
		} else {
			log.Println("Connected to Redis")
		}
	}

	router := setupRouter(cfg)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildGateway assembles the LLM fallback chain in configured priority order.
// A missing key just drops that backend from the chain.
func buildGateway(cfg *config.Config) *llm.Gateway {
	var providers []llm.Provider
	for _, name := range cfg.LLM.Providers {
		switch name {
		case "gemini":
			if cfg.Gemini.ApiKey == "" {
				continue
			}
			gemini, err := llm.NewGemini(context.Background(), cfg.Gemini.ApiKey, cfg.Gemini.Model)
			if err != nil {
				log.Printf("Failed to init Gemini backend: %v", err)
				continue
			}
			providers = append(providers, gemini)
		case "openai":
			if cfg.Openai.ApiKey == "" {
				continue
			}
			providers = append(providers, llm.NewOpenAI(cfg.Openai.ApiKey, cfg.Openai.Model))
		default:
			log.Printf("Unknown llm provider %q in config, skipping", name)
		}
	}

	if len(providers) == 0 {
		log.Println("No LLM backends configured; client replies and evaluations use deterministic fallbacks")
		return nil
	}
	return llm.NewGateway(providers...)
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	allowOrigins := cfg.Server.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	api := router.Group("/")
	routes.SetupSimulationRoutes(api)

	return router
}
