package main

import (
	"flag"
	"os"
	"strings"

	"github.com/ishatailor/AI-DJ/pkg/logger"
	"github.com/ishatailor/AI-DJ/pkg/mixdj"
	"github.com/ishatailor/AI-DJ/pkg/utils"
)

var (
	port           int
	dbPath         string
	tempDir        string
	outputDir      string
	mixDuration    float64
	maxRenders     int
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("AIDJ_DB_PATH", "aidj.sqlite3"), "Path to SQLite history database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("AIDJ_TEMP_DIR", os.TempDir()), "Temporary directory for uploads")
	flag.StringVar(&outputDir, "out", getEnvOrDefault("AIDJ_OUTPUT_DIR", "mixes"), "Directory for rendered WAV files")
	flag.Float64Var(&mixDuration, "duration", 120, "Default mix duration in seconds")
	flag.IntVar(&maxRenders, "max-renders", 2, "Maximum concurrent render jobs")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	if err := utils.EnsureDir(outputDir); err != nil {
		log.Fatal("failed to create output dir %s: %v", outputDir, err)
	}

	service, err := mixdj.NewService(
		mixdj.WithDBPath(dbPath),
		mixdj.WithMixDuration(mixDuration),
		mixdj.WithMaxConcurrentRenders(maxRenders),
	)
	if err != nil {
		log.Fatal("failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		OutputDir:      outputDir,
		AllowedOrigins: origins,
	}

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatal("server failed: %v", err)
	}
}
