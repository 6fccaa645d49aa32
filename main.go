package main

import (
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	qhttp "studentlevel/http"
	"studentlevel/logger"
	"studentlevel/ml"
)

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		MaxBodyBytes   int64    `yaml:"max_body_bytes"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log       logger.Config `yaml:"log"`
	Artifacts struct {
		Model        string `yaml:"model"`
		TopicEncoder string `yaml:"topic_encoder"`
		LevelEncoder string `yaml:"level_encoder"`
	} `yaml:"artifacts"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
}

func main() {
	// 1. Load config (optional; defaults keep the working-directory contract)
	config := loadConfig("config.yaml")

	log, err := logger.New(config.Log)
	if err != nil {
		stdlog.Fatalf("Failed to build logger: %v", err)
	}
	defer log.Sync()

	// 2. Load artifacts; the process must not serve traffic without them
	paths := artifactPaths(config)
	artifacts, err := ml.LoadArtifacts(paths)
	if err != nil {
		log.Fatal("failed to load artifacts", zap.Error(err))
	}
	log.Info("artifacts loaded",
		zap.Strings("topics", artifacts.Topics.Classes()),
		zap.Strings("levels", artifacts.Levels.Classes()))

	watcher, err := ml.WatchArtifacts(paths, log)
	if err != nil {
		log.Warn("artifact watcher unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	predictor, err := ml.NewPredictor(artifacts, config.Cache.Size)
	if err != nil {
		log.Fatal("failed to build predictor", zap.Error(err))
	}

	// 3. Start HTTP server
	server := qhttp.NewServer(serverConfig(config), predictor, log)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if err := server.Stop(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("exiting")
}

// loadConfig reads config.yaml when present; a missing file means defaults.
func loadConfig(path string) Config {
	var config Config
	config.Cache.Size = 1024

	file, err := os.Open(path)
	if err != nil {
		return config
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		stdlog.Fatalf("Failed to parse %s: %v", path, err)
	}
	return config
}

func artifactPaths(config Config) ml.ArtifactPaths {
	paths := ml.DefaultArtifactPaths()
	if config.Artifacts.Model != "" {
		paths.Model = config.Artifacts.Model
	}
	if config.Artifacts.TopicEncoder != "" {
		paths.TopicEncoder = config.Artifacts.TopicEncoder
	}
	if config.Artifacts.LevelEncoder != "" {
		paths.LevelEncoder = config.Artifacts.LevelEncoder
	}
	return paths
}

func serverConfig(config Config) qhttp.ServerConfig {
	serverCfg := qhttp.DefaultServerConfig()
	if config.Http.Port > 0 {
		serverCfg.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds > 0 {
		serverCfg.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if config.Http.MaxBodyBytes > 0 {
		serverCfg.MaxBodyBytes = config.Http.MaxBodyBytes
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverCfg.AllowedOrigins = config.Http.AllowedOrigins
	}
	return serverCfg
}
