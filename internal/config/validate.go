package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if err := validateServerConfig(cfg.Server); err != nil {
		return err
	}

	if err := validateLoggingConfig(cfg.Logging); err != nil {
		return err
	}

	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	return nil
}

func validateServerConfig(s ServerConfig) error {
	addr := strings.TrimSpace(s.Addr)
	if addr == "" {
		return errors.New("server.addr must be set")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("server.addr %q is not host:port: %w", s.Addr, err)
	}
	if s.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("server.max_request_body_bytes must be positive, got %d", s.MaxRequestBodyBytes)
	}
	if s.MaxInFlightRequests <= 0 {
		return fmt.Errorf("server.max_in_flight_requests must be positive, got %d", s.MaxInFlightRequests)
	}

	timeouts := []struct {
		field string
		value int64
	}{
		{"server.read_header_timeout", int64(s.ReadHeaderTimeout)},
		{"server.read_timeout", int64(s.ReadTimeout)},
		{"server.write_timeout", int64(s.WriteTimeout)},
		{"server.idle_timeout", int64(s.IdleTimeout)},
		{"server.shutdown_timeout", int64(s.ShutdownTimeout)},
	}
	for _, t := range timeouts {
		if t.value < 0 {
			return fmt.Errorf("%s must not be negative", t.field)
		}
	}
	return nil
}

func validateLoggingConfig(l LoggingConfig) error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", l.Level)
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", l.Format)
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	if t.Protocol != "" {
		switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
		case "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
		}
	}
	return nil
}
