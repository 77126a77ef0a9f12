package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"

	"exoserve/artifact"
	"exoserve/dataset"
	"exoserve/db"
	exohttp "exoserve/http"
	"exoserve/monitoring"
	"exoserve/serving"
)

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Artifacts struct {
		Root  string `yaml:"root"`
		Watch bool   `yaml:"watch"`
	} `yaml:"artifacts"`
	Datasets map[string]struct {
		Model        string `yaml:"model"`
		Preprocessor string `yaml:"preprocessor"`
		ModelKind    string `yaml:"model_kind"`
	} `yaml:"datasets"`
}

func main() {
	// .env overrides are optional
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	config, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(config)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	auditEnabled := config.Database.Path != ""
	if auditEnabled {
		if err := db.InitDB(config.Database.Path); err != nil {
			sugar.Fatalw("failed to initialize database", "path", config.Database.Path, "error", err)
		}
		defer db.Close()
		sugar.Infow("inference audit log enabled", "path", config.Database.Path)
	}

	store := artifact.NewDirStore(config.Artifacts.Root)
	registry, err := serving.NewRegistry(store, datasetRefs(config), sugar)
	if err != nil {
		sugar.Fatalw("failed to build model registry", "error", err)
	}
	pipeline := serving.NewPipeline(registry, sugar)

	collector := monitoring.NewCollector()
	hub := monitoring.NewHub(collector, sugar)
	go hub.Run()
	defer hub.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if config.Artifacts.Watch {
		watcher := artifact.NewWatcher(store, sugar, func(op, location string) {
			collector.RecordArtifactEvent()
		})
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				sugar.Warnw("artifact watcher stopped", "error", err)
			}
		}()
	}

	handlers := exohttp.NewHandlers(pipeline, registry, collector, hub, sugar, auditEnabled)
	server := exohttp.NewServer(serverConfig(config), handlers, sugar)
	go func() {
		if err := server.Start(); err != nil {
			sugar.Fatalw("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down")

	if err := server.Stop(); err != nil {
		sugar.Warnw("server forced to shutdown", "error", err)
	}
	sugar.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	var config Config

	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// no config file; run on defaults
	} else {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return nil, err
		}
	}

	if config.Http.Port == 0 {
		config.Http.Port = 8080
	}
	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Http.Port = port
		}
	}
	if config.Http.TimeoutSeconds == 0 {
		config.Http.TimeoutSeconds = 30
	}
	if len(config.Http.AllowedOrigins) == 0 {
		config.Http.AllowedOrigins = []string{"*"}
	}
	if config.Artifacts.Root == "" {
		config.Artifacts.Root = "./artifacts"
	}
	return &config, nil
}

// datasetRefs maps the config datasets section onto registry refs, falling
// back to the shipped defaults when the section is absent.
func datasetRefs(config *Config) map[dataset.Type]serving.ArtifactRef {
	if len(config.Datasets) == 0 {
		return serving.DefaultRefs()
	}
	refs := make(map[dataset.Type]serving.ArtifactRef, len(config.Datasets))
	for name, entry := range config.Datasets {
		refs[dataset.Type(name)] = serving.ArtifactRef{
			Model:        entry.Model,
			Preprocessor: entry.Preprocessor,
			ModelKind:    entry.ModelKind,
		}
	}
	return refs
}

func serverConfig(config *Config) exohttp.ServerConfig {
	serverCfg := exohttp.DefaultServerConfig()
	serverCfg.Port = config.Http.Port
	serverCfg.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	serverCfg.AllowedOrigins = config.Http.AllowedOrigins
	return serverCfg
}

func buildLogger(config *Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if config.Log.Level != "" {
		if err := level.Set(config.Log.Level); err != nil {
			return nil, err
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		level,
	)
	if config.Log.File == "" {
		return zap.New(consoleCore), nil
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.Log.File,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}),
		level,
	)
	return zap.New(zapcore.NewTee(consoleCore, fileCore)), nil
}
