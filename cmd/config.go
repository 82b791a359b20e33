package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "testpulse"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	storePathFlagName   = "store"
	outputFlagName      = "output"
	environmentFlagName = "environment"
	verboseFlagName     = "verbose"
	daysFlagName        = "days"
	formatFlagName      = "format"

	storePathKey          = "store.path"
	outputDirKey          = "report.output"
	windowDaysKey         = "report.window_days"
	flakyMinExecutionsKey = "report.flaky_min_executions"
	topFailingLimitKey    = "report.top_failing_limit"
	recentResultsKey      = "report.recent_results_limit"
	environmentKey        = "report.environment"
	formatKey             = "report.format"

	defaultStorePath          = ".testpulse/results"
	defaultOutputDir          = "reports"
	defaultWindowDays         = 30
	defaultFlakyMinExecutions = 5
	defaultTopFailingLimit    = 10
	defaultRecentResultsLimit = 100
	defaultEnvironment        = "unknown"
	defaultFormat             = "all"

	envPrefix = "TESTPULSE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".testpulse.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// Config enumerates every recognized option with its resolved value. It is
// built from viper once per invocation and validated before use.
type Config struct {
	StorePath          string
	OutputDir          string
	WindowDays         int
	FlakyMinExecutions int
	TopFailingLimit    int
	RecentResultsLimit int
	Environment        string
	Format             string
}

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(storePathKey, defaultStorePath)
	viper.SetDefault(outputDirKey, defaultOutputDir)
	viper.SetDefault(windowDaysKey, defaultWindowDays)
	viper.SetDefault(flakyMinExecutionsKey, defaultFlakyMinExecutions)
	viper.SetDefault(topFailingLimitKey, defaultTopFailingLimit)
	viper.SetDefault(recentResultsKey, defaultRecentResultsLimit)
	viper.SetDefault(environmentKey, defaultEnvironment)
	viper.SetDefault(formatKey, defaultFormat)

	// The CI convention is a bare ENVIRONMENT variable; honor it alongside
	// the prefixed form.
	_ = viper.BindEnv(environmentKey, "TESTPULSE_REPORT_ENVIRONMENT", "ENVIRONMENT")

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// loadConfig resolves and validates the configuration once per invocation.
func loadConfig() (Config, error) {
	cfg := Config{
		StorePath:          viper.GetString(storePathKey),
		OutputDir:          viper.GetString(outputDirKey),
		WindowDays:         viper.GetInt(windowDaysKey),
		FlakyMinExecutions: viper.GetInt(flakyMinExecutionsKey),
		TopFailingLimit:    viper.GetInt(topFailingLimitKey),
		RecentResultsLimit: viper.GetInt(recentResultsKey),
		Environment:        viper.GetString(environmentKey),
		Format:             viper.GetString(formatKey),
	}

	if cfg.StorePath == "" {
		return Config{}, fmt.Errorf("config %s must not be empty", storePathKey)
	}

	if cfg.WindowDays <= 0 {
		return Config{}, fmt.Errorf("config %s must be positive, got %d", windowDaysKey, cfg.WindowDays)
	}

	if cfg.FlakyMinExecutions <= 0 {
		return Config{}, fmt.Errorf("config %s must be positive, got %d", flakyMinExecutionsKey, cfg.FlakyMinExecutions)
	}

	if cfg.TopFailingLimit <= 0 {
		return Config{}, fmt.Errorf("config %s must be positive, got %d", topFailingLimitKey, cfg.TopFailingLimit)
	}

	if cfg.RecentResultsLimit <= 0 {
		return Config{}, fmt.Errorf("config %s must be positive, got %d", recentResultsKey, cfg.RecentResultsLimit)
	}

	return cfg, nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// newLogger builds the process logger writing to a rotated file. The handle
// is passed explicitly into every component; nothing relies on a global
// default.
func newLogger(verbose bool) *slog.Logger {
	logPath := viper.GetString(logFilenameKey)
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	return slog.New(handler)
}
