package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "lifequest.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.RecalWindowDays != 14 {
		t.Fatalf("expected default recal window 14, got %d", cfg.RecalWindowDays)
	}
	if cfg.QuarterlyDays != 0 || cfg.AnnualDays != 0 {
		t.Fatalf("expected zero award overrides, got %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LIFEQUEST_DB", "/tmp/custom.db")
	t.Setenv("LIFEQUEST_CLASSIFIER_URL", "http://localhost:9000/classify")
	t.Setenv("LIFEQUEST_QUARTERLY_DAYS", "30")
	t.Setenv("LIFEQUEST_RECAL_WINDOW_DAYS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Fatalf("db path override ignored: %q", cfg.DBPath)
	}
	if cfg.ClassifierURL != "http://localhost:9000/classify" {
		t.Fatalf("classifier url override ignored: %q", cfg.ClassifierURL)
	}
	if cfg.QuarterlyDays != 30 || cfg.RecalWindowDays != 7 {
		t.Fatalf("numeric overrides ignored: %+v", cfg)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("LIFEQUEST_QUARTERLY_DAYS", "often")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric override")
	}
}
