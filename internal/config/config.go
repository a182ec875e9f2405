package config

import (
	"flag"
	"os"
	"time"
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenExpiration time.Duration
	GatewaySecret   string

	// StrictStatusFlow включает проверку графа переходов статусов.
	// По умолчанию выключено: исходная система разрешала любой переход.
	StrictStatusFlow bool
	// TerminalCancelled запрещает любые записи в заказ после CANCELLED.
	TerminalCancelled bool
	// MonotonicLocation отклоняет обновления позиции со временем раньше сохранённого.
	MonotonicLocation bool
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	cfg := &Config{}

	var tokenExp string
	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.StringVar(&tokenExp, "t", "", "время жизни JWT токена (например 24h)")
	flag.BoolVar(&cfg.StrictStatusFlow, "strict-status", false, "включить граф допустимых переходов статусов")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}

	// JWT секрет
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "default-secret-change-in-production"
	}

	// Секрет платёжного шлюза (пустой — пополнения будут отклоняться)
	cfg.GatewaySecret = os.Getenv("GATEWAY_SECRET")

	// Время жизни токена
	cfg.TokenExpiration = 24 * time.Hour
	if tokenExp != "" {
		if d, err := time.ParseDuration(tokenExp); err == nil {
			cfg.TokenExpiration = d
		}
	}
	if envExp := os.Getenv("TOKEN_EXPIRATION"); envExp != "" {
		if d, err := time.ParseDuration(envExp); err == nil {
			cfg.TokenExpiration = d
		}
	}

	// Политики жизненного цикла заказа
	if v := os.Getenv("STRICT_STATUS_FLOW"); v != "" {
		cfg.StrictStatusFlow = v == "true" || v == "1"
	}
	if v := os.Getenv("TERMINAL_CANCELLED"); v != "" {
		cfg.TerminalCancelled = v == "true" || v == "1"
	}
	if v := os.Getenv("MONOTONIC_LOCATION"); v != "" {
		cfg.MonotonicLocation = v == "true" || v == "1"
	}

	return cfg
}
