// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	migrateOnly     = pflag.Bool("migrate-only", false, "Runs database migrations and exits")
	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validChainTypes = []string{"memory", "s3"}
	validDBDrivers  = []string{"sqlite", "postgres"}
)

func genSecret(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("security.master_key", "security_master_key")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("chain.backend", "chain_backend")
	v.BindEnv("chain.latency_ms", "chain_latency_ms")
	v.BindEnv("chain.timeout_ms", "chain_timeout_ms")
	v.BindEnv("chain.attempts", "chain_attempts")

	v.BindEnv("aws.access_key", "aws_access_key")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_types", "upload_allowed_types")

	v.BindEnv("storage.max_usage", "storage_max_usage")

	v.BindEnv("share.link_expiry_days", "share_link_expiry_days")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("chain.backend", "memory")
	v.SetDefault("chain.latency_ms", 150)
	v.SetDefault("chain.timeout_ms", 10000)
	v.SetDefault("chain.attempts", 2)

	v.SetDefault("upload.max_size", 50)
	v.SetDefault("upload.allowed_types", []string{})

	v.SetDefault("storage.max_usage", 1024)

	v.SetDefault("share.link_expiry_days", 7)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret(64) + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	// The master key wraps per-file encryption keys before they hit the
	// database, so it has to be exactly 32 bytes of hex
	masterKey := v.GetString("security.master_key")
	if masterKey == "" {
		fmt.Println("WARNING: You haven't set a master key, so one has been generated for you:\n\n" + genSecret(32) + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if k, err := hex.DecodeString(masterKey); err != nil || len(k) != 32 {
		return errors.New("security.master_key must be 64 hex characters (32 bytes)")
	}

	switch v.GetString("chain.backend") {
	case "s3":
		{
			if v.GetString("aws.access_key") == "" {
				return errors.New("access key can't be empty")
			}
			if v.GetString("aws.secret_access_key") == "" {
				return errors.New("secret access key can't be empty")
			}
			if v.GetString("aws.region") == "" {
				return errors.New("region can't be empty")
			}
			if v.GetString("aws.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
		}
	case "memory":
		{
			zap.L().Warn("Using the in-memory chain backend. Stored blobs won't survive a restart")
		}
	default:
		return fmt.Errorf("invalid chain backend provided, must be one of %v", validChainTypes)
	}

	if v.GetInt("chain.timeout_ms") <= 0 {
		return errors.New("chain.timeout_ms must be bigger than 0")
	}

	if v.GetInt("chain.attempts") <= 0 {
		return errors.New("chain.attempts must be bigger than 0")
	}

	if v.GetInt("storage.max_usage") <= 0 {
		return errors.New("max usage must be bigger than 0")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("max upload size must be bigger than 0")
	}

	if v.GetInt("share.link_expiry_days") <= 0 {
		return errors.New("share.link_expiry_days must be bigger than 0")
	}

	// Both are configured in MiB
	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	v.Set("storage.max_usage", v.GetInt64("storage.max_usage")<<20)
	return nil
}

// MigrateOnly reports whether the app should exit after running migrations
func MigrateOnly() bool {
	return *migrateOnly
}
