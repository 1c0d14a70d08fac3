// Package config exposes process-level configuration read from the environment.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// SessionStoreType selects the backend holding session values.
type SessionStoreType string

const (
	SessionStoreRedis  SessionStoreType = "redis"
	SessionStoreCookie SessionStoreType = "cookie"
)

// LoadEnvFile loads variables from a .env file in the working directory.
// A missing file is not an error; variables already set win.
func LoadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("UC_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("UC_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("UC_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/usercenter"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("UC_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetSessionStore returns the configured session backend, redis by default.
func GetSessionStore() SessionStoreType {
	switch SessionStoreType(strings.ToLower(os.Getenv("UC_SESSION_STORE"))) {
	case SessionStoreCookie:
		return SessionStoreCookie
	default:
		return SessionStoreRedis
	}
}

// GetRedisAddr returns the external Redis address. Empty means embedded.
func GetRedisAddr() string {
	return os.Getenv("UC_REDIS_ADDR")
}

// GetRedisKeyPrefix returns the namespace of session keys in Redis.
func GetRedisKeyPrefix() string {
	prefix := os.Getenv("UC_REDIS_KEY_PREFIX")
	if prefix == "" {
		return GetName() + ":session:"
	}
	return prefix
}
