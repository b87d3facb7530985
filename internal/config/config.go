package config

import (
	env_utils "crmm/internal/util/env"
	"crmm/internal/util/logger"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var log = logger.GetLogger()

type EnvVariables struct {
	IsTesting       bool
	DatabaseDsn     string            `env:"DATABASE_DSN"      required:"true"`
	EnvMode         env_utils.EnvMode `env:"ENV_MODE"          required:"true"`
	BackendRootPath string            `env:"BACKEND_ROOT_PATH" required:"true"`
	HttpPort        string            `env:"HTTP_PORT"                          env-default:"4005"`
	// cache
	ValkeyHost     string `env:"VALKEY_HOST"     required:"true"`
	ValkeyPort     string `env:"VALKEY_PORT"     required:"true"`
	ValkeyUsername string `env:"VALKEY_USERNAME" required:"false"`
	ValkeyPassword string `env:"VALKEY_PASSWORD" required:"false"`
	ValkeyIsSsl    bool   `env:"VALKEY_IS_SSL"   required:"true"`
	// search index
	OpenSearchURL           string `env:"OPENSEARCH_URL"            required:"true"`
	OpenSearchAPIPort       string `env:"OPENSEARCH_API_PORT"       required:"true"`
	OpenSearchProjectsIndex string `env:"OPENSEARCH_PROJECTS_INDEX"                 env-default:"projects"`
	// files
	StoragePath string `env:"STORAGE_PATH" required:"true"`
	// abuse protection
	InvalidAuthAttemptsLimit         int `env:"INVALID_AUTH_ATTEMPTS_LIMIT"          env-default:"25"`
	InvalidAuthAttemptsWindowSeconds int `env:"INVALID_AUTH_ATTEMPTS_WINDOW_SECONDS" env-default:"1800"`
	ModifyRequestsPerSecond          int `env:"MODIFY_REQUESTS_PER_SECOND"           env-default:"5"`
	ModifyRequestsBurst              int `env:"MODIFY_REQUESTS_BURST"                env-default:"30"`
}

var (
	env  EnvVariables
	once sync.Once
)

func GetEnv() EnvVariables {
	once.Do(loadEnvVariables)
	return env
}

func loadEnvVariables() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Warn("could not get current working directory", "error", err)
		cwd = "."
	}

	backendRoot := cwd
	for {
		if _, err := os.Stat(filepath.Join(backendRoot, "go.mod")); err == nil {
			break
		}

		parent := filepath.Dir(backendRoot)
		if parent == backendRoot {
			break
		}

		backendRoot = parent
	}

	env.BackendRootPath = backendRoot

	envPaths := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(backendRoot, ".env"),
	}

	var loaded bool
	for _, path := range envPaths {
		log.Info("Trying to load .env", "path", path)
		if err := godotenv.Load(path); err == nil {
			log.Info("Successfully loaded .env", "path", path)
			loaded = true
			break
		}
	}

	if !loaded {
		log.Error("Error loading .env file: could not find .env in any location")
		os.Exit(1)
	}

	err = cleanenv.ReadEnv(&env)
	if err != nil {
		log.Error("Configuration could not be loaded", "error", err)
		os.Exit(1)
	}

	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			env.IsTesting = true
			break
		}
	}

	if env.EnvMode != env_utils.EnvModeDevelopment && env.EnvMode != env_utils.EnvModeProduction {
		log.Error("ENV_MODE is invalid", "mode", env.EnvMode)
		os.Exit(1)
	}
	log.Info("ENV_MODE loaded", "mode", env.EnvMode)

	if !filepath.IsAbs(env.StoragePath) {
		env.StoragePath = filepath.Join(backendRoot, env.StoragePath)
	}

	if err := os.MkdirAll(env.StoragePath, 0o755); err != nil {
		log.Error("STORAGE_PATH could not be created", "path", env.StoragePath, "error", err)
		os.Exit(1)
	}

	if env.InvalidAuthAttemptsLimit <= 0 {
		log.Error("INVALID_AUTH_ATTEMPTS_LIMIT must be positive", "limit", env.InvalidAuthAttemptsLimit)
		os.Exit(1)
	}

	log.Info("Environment variables loaded successfully!")
}
