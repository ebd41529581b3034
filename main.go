package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"chatview/internal/api"
	"chatview/internal/config"
	"chatview/internal/extract"
	"chatview/internal/filestore"
	"chatview/internal/redis"
	"chatview/internal/service/importer"
	"chatview/internal/storage"
	"chatview/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CHATVIEW_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbType := os.Getenv("CHATVIEW_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	var db *sql.DB
	if _, ok := cfg.Databases[dbType]; ok {
		log.Printf("dbType: %s\n", dbType)
		db, err = storage.Open(dbType, cfg)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
		// Create necessary tables: imports, stored_files
		if err := storage.Migrate(db, dbType); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
	} else {
		log.Printf("no %s database configured, import history disabled", dbType)
	}

	var fileCache *redis.FileInfoCache
	if cfg.Redis.Enabled {
		rdb, err := redis.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("create redis client: %v", err)
		}
		defer rdb.Close()
		fileCache = redis.NewFileInfoCache(rdb, redis.DefaultFileInfoTTL)
	}

	store, err := filestore.New(cfg.BasicConfig.FilesDir)
	if err != nil {
		log.Fatalf("open file store: %v", err)
	}
	var pool *worker.Pool
	if cfg.BasicConfig.ExtractWorkers > 1 {
		pool = worker.NewPool(cfg.BasicConfig.ExtractWorkers, cfg.BasicConfig.ExtractWorkers*2)
		defer pool.Stop()
	}
	importService := importer.NewService(db,
		extract.New(store, pool).WithMaxEntrySize(cfg.BasicConfig.MaxEntryBytes()),
		cfg.BasicConfig.UploadsDir,
	)

	cleanCtx, cleanCancel := context.WithCancel(context.Background())
	defer cleanCancel()
	importService.StartUploadCleaner(cleanCtx,
		time.Duration(cfg.BasicConfig.UploadTTL)*time.Minute,
		time.Duration(cfg.BasicConfig.UploadCleanMinutes)*time.Minute,
	)

	handlers := api.NewHandler(importService, store, fileCache, cfg.BasicConfig.MaxUploadBytes())

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20
	router.Use(api.CORSMiddleware(cfg.BasicConfig.CORSOrigins))
	handlers.RegisterRoutes(router)

	log.Printf("files served from: %s", store.Dir())
	log.Printf("upload directory: %s", cfg.BasicConfig.UploadsDir)
	addr := cfg.BasicConfig.ServerAddress
	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
