package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "s1765114.eu-fsn-3.betterstackdata.com")
	t.Setenv("BETTERSTACK_TOKEN", "token-123")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BetterStackEnabled {
		t.Fatalf("expected BetterStackEnabled=true")
	}
	if cfg.BetterStackEndpoint != "s1765114.eu-fsn-3.betterstackdata.com" {
		t.Fatalf("unexpected BetterStackEndpoint: %q", cfg.BetterStackEndpoint)
	}
	if cfg.BetterStackToken != "token-123" {
		t.Fatalf("unexpected BetterStackToken")
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "statline-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "statline-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_ESPNConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ESPN_TIMEOUT", "")
		t.Setenv("ESPN_CIRCUIT_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.ESPNTimeout != 20*time.Second {
			t.Fatalf("unexpected default espn timeout: %s", cfg.ESPNTimeout)
		}
		if !cfg.ESPNCircuitEnabled {
			t.Fatalf("expected circuit breaker enabled by default")
		}
		if cfg.ESPNCircuitFailureCount != 5 {
			t.Fatalf("unexpected default circuit failure count: %d", cfg.ESPNCircuitFailureCount)
		}
		if cfg.ESPNSiteBaseURL == "" || cfg.ESPNWebBaseURL == "" || cfg.ESPNCoreBaseURL == "" {
			t.Fatalf("expected non-empty default base URLs")
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Setenv("ESPN_TIMEOUT", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid ESPN_TIMEOUT")
		}
	})

	t.Run("circuit failure count must be positive", func(t *testing.T) {
		t.Setenv("ESPN_TIMEOUT", "")
		t.Setenv("ESPN_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for ESPN_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestLoad_FetchConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.FetchMaxWorkers != 8 {
			t.Fatalf("unexpected default fetch workers: %d", cfg.FetchMaxWorkers)
		}
		if cfg.FetchRequestTimeout != 20*time.Second {
			t.Fatalf("unexpected default fetch request timeout: %s", cfg.FetchRequestTimeout)
		}
		if cfg.FetchMaxRetries != 2 {
			t.Fatalf("unexpected default fetch retries: %d", cfg.FetchMaxRetries)
		}
		if cfg.FetchRetryBackoff != 500*time.Millisecond {
			t.Fatalf("unexpected default fetch retry backoff: %s", cfg.FetchRetryBackoff)
		}
	})

	t.Run("workers must be positive", func(t *testing.T) {
		t.Setenv("FETCH_MAX_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for FETCH_MAX_WORKERS=0")
		}
	})
}

func TestLoad_ScraperAndProjectionParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("projection urls parsed from csv", func(t *testing.T) {
		t.Setenv("PROJECTION_URLS", " https://stats.example.com/proj/qb , https://stats.example.com/proj/rb ")
		t.Setenv("SCRAPER_REQUESTS_PER_SECOND", "2.5")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.ProjectionURLs) != 2 {
			t.Fatalf("unexpected projection urls length: %d", len(cfg.ProjectionURLs))
		}
		if cfg.ProjectionURLs[0] != "https://stats.example.com/proj/qb" {
			t.Fatalf("unexpected first projection url: %s", cfg.ProjectionURLs[0])
		}
		if cfg.ScraperRequestsPerSecond != 2.5 {
			t.Fatalf("unexpected scraper rate: %f", cfg.ScraperRequestsPerSecond)
		}
	})

	t.Run("scraper rate must be positive", func(t *testing.T) {
		t.Setenv("SCRAPER_REQUESTS_PER_SECOND", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SCRAPER_REQUESTS_PER_SECOND=0")
		}
	})

	t.Run("internal job token is trimmed", func(t *testing.T) {
		t.Setenv("SCRAPER_REQUESTS_PER_SECOND", "")
		t.Setenv("INTERNAL_JOB_TOKEN", "  internal-job-token  ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.InternalJobToken != "internal-job-token" {
			t.Fatalf("unexpected internal job token: %q", cfg.InternalJobToken)
		}
	})
}
