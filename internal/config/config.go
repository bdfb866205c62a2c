// Package config loads the environment-variable configuration described in
// spec.md §6 for both binaries. AUTH_KEY validation happens here, as early
// in the process as possible, since Go has no compile-time way to check it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const authKeyLen = 32

// LoadDotEnv loads a .env file if present. Missing files are not an error —
// both binaries are expected to run from real environment variables in
// production and a .env file only in development.
func LoadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// ListenerConfig is the listener's environment contract.
type ListenerConfig struct {
	SSID        string
	Password    string
	GatewayIP   string
	GatewayPort int
	AuthKey     [authKeyLen]byte
}

func LoadListener() (ListenerConfig, error) {
	var cfg ListenerConfig

	cfg.SSID = os.Getenv("SSID")
	if cfg.SSID == "" {
		return cfg, fmt.Errorf("config: SSID is required")
	}
	cfg.Password = os.Getenv("PASSWORD")

	cfg.GatewayIP = os.Getenv("GATEWAY_IP")
	if cfg.GatewayIP == "" {
		return cfg, fmt.Errorf("config: GATEWAY_IP is required")
	}

	portStr := os.Getenv("GATEWAY_PORT")
	if portStr == "" {
		portStr = "9090"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return cfg, fmt.Errorf("config: GATEWAY_PORT %q is not a valid port", portStr)
	}
	cfg.GatewayPort = port

	key, err := authKeyFromEnv()
	if err != nil {
		return cfg, err
	}
	cfg.AuthKey = key

	return cfg, nil
}

// GatewayConfig is the gateway's environment contract.
type GatewayConfig struct {
	AuthKey     [authKeyLen]byte
	DatabaseURI string
	ListenAddr  string
	AdminAddr   string
	NATSURL     string
}

func LoadGateway() (GatewayConfig, error) {
	var cfg GatewayConfig

	cfg.DatabaseURI = os.Getenv("DATABASE_URI")
	if cfg.DatabaseURI == "" {
		return cfg, fmt.Errorf("config: DATABASE_URI is required")
	}

	cfg.ListenAddr = os.Getenv("LISTEN_ADDR")
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "0.0.0.0:9090"
	}

	cfg.AdminAddr = os.Getenv("ADMIN_ADDR")
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = "0.0.0.0:9091"
	}

	cfg.NATSURL = os.Getenv("NATS_URL")

	key, err := authKeyFromEnv()
	if err != nil {
		return cfg, err
	}
	cfg.AuthKey = key

	return cfg, nil
}

func authKeyFromEnv() ([authKeyLen]byte, error) {
	var key [authKeyLen]byte
	raw := os.Getenv("AUTH_KEY")
	if len(raw) != authKeyLen {
		return key, fmt.Errorf("config: AUTH_KEY must be exactly %d bytes, got %d", authKeyLen, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}
