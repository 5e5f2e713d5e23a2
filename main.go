package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/probekit/healthd/internal/config"
	"github.com/probekit/healthd/internal/hotreload"
	"github.com/probekit/healthd/internal/server"
)

func main() {
	configFile := pflag.String("config", "", "Path to configuration file (YAML or JSON)")

	// Server configuration
	host := pflag.String("host", "localhost", "Host to bind the server on")
	port := pflag.String("port", "8080", "Port to serve the probe endpoints on")
	metricsPort := pflag.String("metrics-port", "9090", "Port to serve Prometheus metrics on")
	readTimeout := pflag.Duration("read-timeout", 15*time.Second, "HTTP server read timeout")
	writeTimeout := pflag.Duration("write-timeout", 15*time.Second, "HTTP server write timeout")
	idleTimeout := pflag.Duration("idle-timeout", 60*time.Second, "HTTP server idle timeout")
	maxRequestSize := pflag.Int64("max-request-size", 1*1024*1024, "Maximum request size in bytes")
	shutdownTimeout := pflag.Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")

	// Observability flags
	logLevel := pflag.String("log-level", "info", "Logging level: debug, info, warn, error")
	logFormat := pflag.String("log-format", "json", "Logging format: json, console")

	// Security flags
	rateLimitEnabled := pflag.Bool("rate-limit-enabled", true, "Enable per-IP rate limiting on non-probe routes")
	rateLimitRPS := pflag.Int("rate-limit-rps", 100, "Rate limit requests per second per client")

	// Hot reload flags
	hotReload := pflag.Bool("hot-reload", true, "Enable hot reload of the configuration file")
	hotReloadDebounce := pflag.Duration("hot-reload-debounce", 500*time.Millisecond, "Debounce time for hot reload events")

	// TLS flags
	tlsEnabled := pflag.Bool("tls-enabled", false, "Serve over TLS")
	tlsCertFile := pflag.String("tls-cert-file", "", "Path to TLS certificate file")
	tlsKeyFile := pflag.String("tls-key-file", "", "Path to TLS key file")

	pflag.Usage = printUsage
	pflag.Parse()

	cliFlags := &config.CLIFlags{
		Host:              host,
		Port:              port,
		MetricsPort:       metricsPort,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxRequestSize:    maxRequestSize,
		ShutdownTimeout:   shutdownTimeout,
		LogLevel:          logLevel,
		LogFormat:         logFormat,
		RateLimitEnabled:  rateLimitEnabled,
		RateLimitRPS:      rateLimitRPS,
		HotReload:         hotReload,
		HotReloadDebounce: hotReloadDebounce,
		TLSEnabled:        tlsEnabled,
		TLSCertFile:       tlsCertFile,
		TLSKeyFile:        tlsKeyFile,
	}

	// Load configuration with precedence (CLI > Env > File > Defaults)
	cfg, err := config.LoadConfig(*configFile, cliFlags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Hot reload only makes sense with a config file to watch.
	var reloadManager *hotreload.Manager
	if cfg.HotReload.Enabled && cfg.Source != "" {
		reloadManager, err = hotreload.NewManager(srv.Logger())
		if err != nil {
			log.Fatalf("Failed to create hot reload manager: %v", err)
		}
		reloadManager.SetDebounce(cfg.HotReload.Debounce)

		if err := reloadManager.Watch(cfg.Source); err != nil {
			log.Fatalf("Failed to watch config file: %v", err)
		}
		if err := reloadManager.Register(srv); err != nil {
			log.Fatalf("Failed to register server for hot reload: %v", err)
		}
		if err := reloadManager.Start(); err != nil {
			log.Fatalf("Failed to start hot reload: %v", err)
		}
	}

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	if reloadManager != nil {
		if err := reloadManager.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shutdown hot reload manager: %v", err)
		}
	}
}

// printUsage prints the usage information
func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nServes health probe endpoints: /health, /ready, /status, /openapi.json, /metrics\n")
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	pflag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
	fmt.Fprintf(os.Stderr, "  HEALTHD_HOST, HEALTHD_PORT, HEALTHD_METRICS_PORT\n")
	fmt.Fprintf(os.Stderr, "  HEALTHD_READ_TIMEOUT, HEALTHD_WRITE_TIMEOUT, HEALTHD_IDLE_TIMEOUT\n")
	fmt.Fprintf(os.Stderr, "  HEALTHD_MAX_REQUEST_SIZE, HEALTHD_SHUTDOWN_TIMEOUT\n")
	fmt.Fprintf(os.Stderr, "  HEALTHD_LOG_LEVEL, HEALTHD_LOG_FORMAT\n")
	fmt.Fprintf(os.Stderr, "  HEALTHD_RATE_LIMIT_ENABLED, HEALTHD_RATE_LIMIT_RPS\n")
	fmt.Fprintf(os.Stderr, "  HEALTHD_HOT_RELOAD, HEALTHD_HOT_RELOAD_DEBOUNCE\n")
	fmt.Fprintf(os.Stderr, "  HEALTHD_TLS_ENABLED, HEALTHD_TLS_CERT_FILE, HEALTHD_TLS_KEY_FILE\n")
	fmt.Fprintf(os.Stderr, "\nExample usage:\n")
	fmt.Fprintf(os.Stderr, "  %s -port 8081 -metrics-port 9091\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s -config ./healthd.yaml\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  HEALTHD_PORT=8081 %s\n", os.Args[0])
}
