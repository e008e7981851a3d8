package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration, sourced from the environment with
// flag overrides applied in main.
type Config struct {
	SerialDevice string
	SerialBaud   int
	SocketURL    string
	BindAddr     string
	LogLevel     string

	// StatusInterval is how often a real-time status query is sent; it
	// bounds how stale the buffer telemetry can be.
	StatusInterval time.Duration

	// JogTick is the operator-input sampling period.
	JogTick time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment variables")
	}

	baud, _ := strconv.Atoi(getEnv("SERIAL_BAUD", "115200"))
	statusMs, _ := strconv.Atoi(getEnv("STATUS_INTERVAL_MS", "200"))
	jogMs, _ := strconv.Atoi(getEnv("JOG_TICK_MS", "8"))

	return &Config{
		SerialDevice:   getEnv("SERIAL_DEVICE", "/dev/ttyUSB0"),
		SerialBaud:     baud,
		SocketURL:      getEnv("SOCKET_URL", ""),
		BindAddr:       getEnv("BIND_ADDR", ":9091"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StatusInterval: time.Duration(statusMs) * time.Millisecond,
		JogTick:        time.Duration(jogMs) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
