package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v2"

	"flightdelay/db"
	qhttp "flightdelay/http"
	"flightdelay/logging"
	"flightdelay/ml"
	"flightdelay/monitoring"
)

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Model struct {
		Type      string `yaml:"type"`
		Path      string `yaml:"path"`
		VocabPath string `yaml:"vocab_path"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log logging.Config `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	if err := logging.Init(config.Log); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()
	logger := logging.GetLogger()

	// 3. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		logger.Fatalw("failed to initialize database", "error", err, "path", config.Database.Path)
	}
	defer db.Close()
	logger.Infow("database initialized", "path", config.Database.Path)

	// 4. Load model and frozen vocabulary. Both are fatal when missing:
	// the vocabulary fixes the feature vector layout the weights were
	// trained against, so serving without the matching file would silently
	// misalign every prediction.
	predictor, err := loadPredictor(config.Model.Type, config.Model.Path, config.Model.VocabPath)
	if err != nil {
		logger.Fatalw("failed to load serving state", "error", err)
	}
	logger.Infow("model loaded", "type", config.Model.Type, "features", predictor.Vocabulary().Size(), "airlines", len(predictor.Vocabulary().Airlines))

	// 5. Start prediction feed and HTTP server
	feed := monitoring.NewPredictionFeed()
	go feed.Run()

	api, err := qhttp.NewAPI(predictor, monitoring.NewCollector(), feed, db.SavePredictions)
	if err != nil {
		logger.Fatalw("failed to build API", "error", err)
	}

	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port > 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds > 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := qhttp.NewServer(serverConfig, api)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalw("HTTP server failed", "error", err)
		}
	}()

	// 6. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	feed.Stop()
	if err := server.Stop(); err != nil {
		logger.Errorw("server forced to shutdown", "error", err)
	}

	logger.Info("exiting")
}

func loadPredictor(modelType, modelPath, vocabPath string) (*ml.Predictor, error) {
	model, err := ml.LoadModel(modelType, modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: model %s: %v", ml.ErrModelUnavailable, modelPath, err)
	}
	vocab, err := ml.LoadVocabulary(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("%w: vocabulary %s: %v", ml.ErrModelUnavailable, vocabPath, err)
	}
	return ml.NewPredictor(model, vocab)
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
