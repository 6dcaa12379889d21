package main

import (
	"context"
	"strings"
	"time"

	"github.com/TwoX-In/GenAI-Hackathon/agent"
	"github.com/TwoX-In/GenAI-Hackathon/classifier"
	"github.com/TwoX-In/GenAI-Hackathon/config"
	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/handlers"
	"github.com/TwoX-In/GenAI-Hackathon/inventory"
	"github.com/TwoX-In/GenAI-Hackathon/pipeline"
	"github.com/TwoX-In/GenAI-Hackathon/processing"
	"github.com/TwoX-In/GenAI-Hackathon/storage"
	"github.com/TwoX-In/GenAI-Hackathon/transcribe"
	"github.com/TwoX-In/GenAI-Hackathon/translation"
	"github.com/TwoX-In/GenAI-Hackathon/tts"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"github.com/TwoX-In/GenAI-Hackathon/video"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	if config.DEBUG_MODE {
		log.SetLevel(log.DebugLevel)
	}
	ctx := context.Background()
	pool := utils.NewPool(config.WORKER_POOL_SIZE)

	stateRemote, err := storage.NewStorage(ctx, storage.StateBucket())
	if err != nil {
		log.Fatalf("State storage: %v", err)
	}
	store := db.NewStore(stateRemote, config.STATE_OBJECT, db.PublishMode(config.STATE_PUBLISH_MODE), pool)
	defer store.Close()

	media, err := storage.NewStorage(ctx, storage.MediaBucket())
	if err != nil {
		log.Fatalf("Media storage: %v", err)
	}

	var translator agent.Translator
	if tc, err := translation.NewClient(ctx, config.GCP_CREDENTIALS); err != nil {
		log.Warnf("Translation disabled: %v", err)
	} else {
		defer tc.Close()
		translator = tc
	}

	var transcriber handlers.Transcriber
	if sc, err := transcribe.NewClient(ctx, config.GCP_CREDENTIALS); err != nil {
		log.Warnf("Transcription disabled: %v", err)
	} else {
		defer sc.Close()
		transcriber = sc
	}

	speech, err := tts.NewClient(ctx, config.GCP_CREDENTIALS)
	if err != nil {
		log.Fatalf("Narration: %v", err)
	}
	defer speech.Close()
	voices, err := config.LoadVoices()
	if err != nil {
		log.Fatalf("Narration voices: %v", err)
	}

	var recommender pipeline.Recommender
	if config.GEMINI_API_KEY != "" {
		gemini, err := inventory.NewGemini(ctx, config.GEMINI_API_KEY, config.GEMINI_MODEL)
		if err != nil {
			log.Fatalf("Inventory: %v", err)
		}
		defer gemini.Close()
		recommender = inventory.NewRecommender(gemini)
	} else {
		log.Warn("GEMINI_API_KEY not set, inventory recommendations disabled")
	}
	calendar, err := inventory.LoadCalendar(config.HOLIDAYS_FILE)
	if err != nil {
		log.Warnf("Holiday calendar: %v", err)
	}

	deriver, err := processing.NewDeriver(pool, config.FONT_FILE)
	if err != nil {
		log.Fatalf("Artifacts: %v", err)
	}
	narrator := video.NewEngine(speech, voices, pool, config.TMP_DIR)

	orchestrator := pipeline.NewOrchestrator(pipeline.Dependencies{
		Classifier:    classifier.NewClient(config.CLASSIFIER_URL, config.CLASSIFIER_TIMEOUT),
		Generator:     agent.NewClient(config.AGENT_URL, config.AGENT_TIMEOUT, translator, media),
		Fetcher:       media,
		Recommender:   recommender,
		Calendar:      calendar,
		Deriver:       deriver,
		Narrator:      narrator,
		Region:        config.INVENTORY_REGION,
		DefaultTarget: config.DEFAULT_TARGET_REGION,
		HolidayCount:  config.HOLIDAY_COUNT,
	})
	h := &handlers.Handlers{
		Pipeline:    orchestrator,
		Artifacts:   deriver,
		Narrator:    narrator,
		Transcriber: transcriber,
		Audio:       media,
		Pool:        pool,
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        30 * 24 * time.Hour,
	}
	if config.CORS_ORIGINS == "" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(config.CORS_ORIGINS, ",")
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/")
	api.Use(store.Middleware())
	api.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, individual end-points can override that
	// Content generation
	api.POST("/artisan/generateContent", h.GenerateContent)
	api.POST("/artisan/transcribe", h.Transcribe)
	// Products
	api.GET("/products", h.ProductList)
	api.GET("/product/:id", h.ProductGet)
	api.GET("/product/:id/preview", h.ProductPreview)
	api.GET("/product/:id/video/edited", h.EditedVideoGet)
	api.GET("/inventory/stored/:id", h.InventoryGet)
	// Derived artifacts and narration
	api.GET("/product/:id/artifact/:kind", h.ArtifactGet)
	api.POST("/product/:id/artifact/:kind", h.ArtifactRegenerate)
	api.POST("/social_media/narrate/:id", h.NarrationRegenerate)

	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
