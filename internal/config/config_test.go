package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/plantwatch")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "pgx" {
		t.Fatalf("driver = %q, want pgx", cfg.DBDriver)
	}
	if cfg.OutlierSigma != 3.0 {
		t.Fatalf("sigma = %v, want 3", cfg.OutlierSigma)
	}
	if cfg.MoistureLowPct != 20 || cfg.MoistureHighPct != 40 {
		t.Fatalf("thresholds = %v/%v, want 20/40", cfg.MoistureLowPct, cfg.MoistureHighPct)
	}
	if cfg.SourceMaxMisses != 5 {
		t.Fatalf("max misses = %d, want 5", cfg.SourceMaxMisses)
	}
	if cfg.Blob.Driver != "fs" {
		t.Fatalf("blob driver = %q, want fs", cfg.Blob.Driver)
	}
	if cfg.StoreTimeout != 10*time.Second {
		t.Fatalf("store timeout = %v", cfg.StoreTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PG_DSN", "postgres://localhost/plantwatch")
	t.Setenv("OUTLIER_SIGMA", "2.5")
	t.Setenv("ARCHIVE_BLOB_DRIVER", "s3")
	t.Setenv("S3_BUCKET_NAME", "plantwatch-archive")
	t.Setenv("REGION_NAME", "eu-west-2")
	t.Setenv("STORE_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/plantwatch" {
		t.Fatalf("dsn fallback not applied: %q", cfg.DatabaseURL)
	}
	if cfg.OutlierSigma != 2.5 {
		t.Fatalf("sigma = %v, want 2.5", cfg.OutlierSigma)
	}
	if cfg.Blob.Region != "eu-west-2" {
		t.Fatalf("region fallback not applied: %q", cfg.Blob.Region)
	}
	if cfg.StoreTimeout != 3*time.Second {
		t.Fatalf("store timeout = %v, want 3s", cfg.StoreTimeout)
	}
}

func TestLoadYAMLOverlayWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("OUTLIER_SIGMA", "2.0")

	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := "database_url: postgres://file/db\noutlier_sigma: 4.0\nblob:\n  driver: memory\n"
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("PLANTWATCH_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://file/db" {
		t.Fatalf("overlay lost: %q", cfg.DatabaseURL)
	}
	if cfg.OutlierSigma != 4.0 {
		t.Fatalf("sigma = %v, want 4", cfg.OutlierSigma)
	}
	if cfg.Blob.Driver != "memory" {
		t.Fatalf("blob driver = %q, want memory", cfg.Blob.Driver)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing dsn", Config{DBDriver: "pgx", OutlierSigma: 3}},
		{"bad driver", Config{DatabaseURL: "x", DBDriver: "oracle", OutlierSigma: 3}},
		{"zero sigma", Config{DatabaseURL: "x", DBDriver: "pgx"}},
		{"s3 without bucket", Config{DatabaseURL: "x", DBDriver: "pgx", OutlierSigma: 3, Blob: BlobConfig{Driver: "s3"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Fatal("validate accepted bad config")
			}
		})
	}
}
