package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string // Address the gRPC server binds to
	GrpcPort int    // Port for the gRPC server

	UdpPort                int // Port for the UDP socket
	UDPBufferSize          int // Size of the buffer for incoming UDP packets (in bytes)
	UDPHeartbeatExpiration int // Expiration time for UDP heartbeat (in milliseconds)

	BoardWidth      int           // Board columns for new sessions
	BoardHeight     int           // Board rows for new sessions
	Seed            float64       // Apple placement seed for new sessions
	StepTime        time.Duration // Duration of one tick
	SessionDuration time.Duration // Hard limit on a session's lifetime
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}
	return fromEnv()
}

// fromEnv builds a Config from the process environment, falling back to
// defaults for unset keys.
func fromEnv() Config {
	return Config{
		HostIP:   getEnv("HOST_IP", "0.0.0.0"),
		GrpcPort: getEnvAsInt("GRPC_PORT", 50051),

		UdpPort:                getEnvAsInt("UDP_PORT", 50052),
		UDPBufferSize:          getEnvAsInt("UDP_BUFFER_SIZE", 2048),
		UDPHeartbeatExpiration: getEnvAsInt("UDP_HEARTBEAT_EXPIRATION", 3000),

		BoardWidth:      getEnvAsInt("BOARD_WIDTH", 127),
		BoardHeight:     getEnvAsInt("BOARD_HEIGHT", 127),
		Seed:            getEnvAsFloat("SEED", 123.0),
		StepTime:        time.Duration(getEnvAsInt("STEP_TIME_MS", 100)) * time.Millisecond,
		SessionDuration: time.Duration(getEnvAsInt("SESSION_DURATION_S", 600)) * time.Second,
	}
}

// getEnv retrieves the value of an environment variable or returns fallback if not set.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if it cannot be parsed.
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Environment variable %s must be an integer: %v", ColorGreen, ColorReset, ColorRed, ColorReset, key, err)
	}
	return value
}

// getEnvAsFloat retrieves the value of an environment variable as a float or logs a fatal error if it cannot be parsed.
func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Environment variable %s must be a number: %v", ColorGreen, ColorReset, ColorRed, ColorReset, key, err)
	}
	return value
}
