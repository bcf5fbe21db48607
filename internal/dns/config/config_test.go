package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
)

func TestLoad_Defaults(t *testing.T) {
	// No env overrides
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "prod" {
		t.Errorf("expected Env=prod, got %q", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %q", cfg.LogLevel)
	}
	if cfg.Bind != "" {
		t.Errorf("expected Bind to be empty, got %q", cfg.Bind)
	}
	if cfg.Port != 53 {
		t.Errorf("expected Port=53, got %d", cfg.Port)
	}
	if !cfg.EnableUDP || !cfg.EnableTCP {
		t.Errorf("expected both transports enabled by default, got udp=%v tcp=%v", cfg.EnableUDP, cfg.EnableTCP)
	}
	if cfg.Zone != "romulan.zone" {
		t.Errorf("expected Zone=romulan.zone, got %q", cfg.Zone)
	}
	if cfg.SOAPrimary != "blackhole.romulan.zone" {
		t.Errorf("expected SOAPrimary=blackhole.romulan.zone, got %q", cfg.SOAPrimary)
	}
	if cfg.SOAMailbox != "hostmaster.romulan.zone" {
		t.Errorf("expected SOAMailbox=hostmaster.romulan.zone, got %q", cfg.SOAMailbox)
	}
	if cfg.SOASerial != 202502191 {
		t.Errorf("expected SOASerial=202502191, got %d", cfg.SOASerial)
	}
	if cfg.SOARefresh != 7200 || cfg.SOARetry != 900 || cfg.SOAExpire != 1209600 {
		t.Errorf("unexpected SOA timers: refresh=%d retry=%d expire=%d", cfg.SOARefresh, cfg.SOARetry, cfg.SOAExpire)
	}
	if cfg.SOAMinimum != 86400 {
		t.Errorf("expected SOAMinimum=86400, got %d", cfg.SOAMinimum)
	}
	if len(cfg.NameServers) != 1 || cfg.NameServers[0] != "blackhole.romulan.zone" {
		t.Errorf("expected NameServers=[blackhole.romulan.zone], got %v", cfg.NameServers)
	}
	if cfg.TTL != 60 {
		t.Errorf("expected TTL=60, got %d", cfg.TTL)
	}
	if cfg.JournalDB != "" {
		t.Errorf("expected JournalDB to be empty by default, got %q", cfg.JournalDB)
	}
	if cfg.JournalCacheSize != 1024 {
		t.Errorf("expected JournalCacheSize=1024, got %d", cfg.JournalCacheSize)
	}
}

func TestLoad_ValidOverrides(t *testing.T) {
	t.Setenv("DNS_ENV", "dev")
	t.Setenv("DNS_LOG_LEVEL", "debug")
	t.Setenv("DNS_BIND", "127.0.0.1")
	t.Setenv("DNS_PORT", "9953")
	t.Setenv("DNS_ENABLE_TCP", "false")
	t.Setenv("DNS_ZONE", "sinkhole.example")
	t.Setenv("DNS_SOA_PRIMARY", "ns1.sinkhole.example")
	t.Setenv("DNS_SOA_MAILBOX", "hostmaster.sinkhole.example")
	t.Setenv("DNS_SOA_SERIAL", "2025082501")
	t.Setenv("DNS_NAMESERVERS", "ns1.sinkhole.example ns2.sinkhole.example")
	t.Setenv("DNS_TTL", "300")
	t.Setenv("DNS_JOURNAL_DB", "/tmp/journal.db")
	t.Setenv("DNS_JOURNAL_CACHE_SIZE", "4096")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "dev" {
		t.Errorf("expected Env=dev, got %q", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %q", cfg.LogLevel)
	}
	if cfg.Bind != "127.0.0.1" {
		t.Errorf("expected Bind=127.0.0.1, got %q", cfg.Bind)
	}
	if cfg.Port != 9953 {
		t.Errorf("expected Port=9953, got %d", cfg.Port)
	}
	if !cfg.EnableUDP {
		t.Error("expected EnableUDP to stay true")
	}
	if cfg.EnableTCP {
		t.Error("expected EnableTCP=false")
	}
	if cfg.Zone != "sinkhole.example" {
		t.Errorf("expected Zone=sinkhole.example, got %q", cfg.Zone)
	}
	if cfg.SOASerial != 2025082501 {
		t.Errorf("expected SOASerial=2025082501, got %d", cfg.SOASerial)
	}
	wantNS := []string{"ns1.sinkhole.example", "ns2.sinkhole.example"}
	if len(cfg.NameServers) != len(wantNS) {
		t.Errorf("expected NameServers length %d, got %d", len(wantNS), len(cfg.NameServers))
	} else {
		for i, v := range wantNS {
			if cfg.NameServers[i] != v {
				t.Errorf("expected NameServers[%d]=%q, got %q", i, v, cfg.NameServers[i])
			}
		}
	}
	if cfg.TTL != 300 {
		t.Errorf("expected TTL=300, got %d", cfg.TTL)
	}
	if cfg.JournalDB != "/tmp/journal.db" {
		t.Errorf("expected JournalDB=/tmp/journal.db, got %q", cfg.JournalDB)
	}
	if cfg.JournalCacheSize != 4096 {
		t.Errorf("expected JournalCacheSize=4096, got %d", cfg.JournalCacheSize)
	}
}

func TestLoad_CommaSeparatedNameservers(t *testing.T) {
	t.Setenv("DNS_NAMESERVERS", "ns1.romulan.zone,ns2.romulan.zone")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(cfg.NameServers) != 2 {
		t.Fatalf("expected 2 nameservers, got %v", cfg.NameServers)
	}
}

func TestLoad_BothTransportsDisabled(t *testing.T) {
	t.Setenv("DNS_ENABLE_UDP", "false")
	t.Setenv("DNS_ENABLE_TCP", "false")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error when both transports are disabled")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("DNS_ENV", "staging")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid DNS_ENV, got nil")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("DNS_LOG_LEVEL", "trace")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid DNS_LOG_LEVEL, got nil")
	}
}

func TestLoad_InvalidBind(t *testing.T) {
	t.Setenv("DNS_BIND", "not_an_ip")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid DNS_BIND, got nil")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("DNS_PORT", "99999")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid DNS_PORT, got nil")
	}
}

func TestLoad_PortNaN(t *testing.T) {
	t.Setenv("DNS_PORT", "not_a_number")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for non-numeric DNS_PORT, got nil")
	}
}

func TestLoad_InvalidZone(t *testing.T) {
	t.Setenv("DNS_ZONE", "not a zone")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid DNS_ZONE, got nil")
	}
}

func TestLoad_InvalidNameserver(t *testing.T) {
	t.Setenv("DNS_NAMESERVERS", "ns1.romulan.zone not@a@name")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid DNS_NAMESERVERS entry, got nil")
	}
}

func TestLoad_WhenKoanfDefaultLoadFails(t *testing.T) {
	orig := defaultLoader
	defaultLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { defaultLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading defaults, got nil")
	}
}

func TestLoad_WhenKoanfEnvLoadFails(t *testing.T) {
	orig := envLoader
	envLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { envLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading env, got nil")
	}
}

func TestLoad_RegisterValidationFails(t *testing.T) {
	orig := registerValidation
	registerValidation = func(v *validator.Validate) error { return errors.New("mocked validation error") }
	defer func() { registerValidation = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked validation error") {
		t.Fatal("expected error when registering validation, got nil")
	}
}

func TestDefaultLoader_LoadsDefaults(t *testing.T) {
	k := koanf.New(".")
	if err := defaultLoader(k); err != nil {
		t.Fatalf("defaultLoader returned error: %v", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	// Compare a subset of defaults
	if cfg.Env != DEFAULT_APP_CONFIG.Env {
		t.Errorf("expected Env=%q, got %q", DEFAULT_APP_CONFIG.Env, cfg.Env)
	}
	if cfg.Zone != DEFAULT_APP_CONFIG.Zone {
		t.Errorf("expected Zone=%q, got %q", DEFAULT_APP_CONFIG.Zone, cfg.Zone)
	}
	if cfg.SOASerial != DEFAULT_APP_CONFIG.SOASerial {
		t.Errorf("expected SOASerial=%d, got %d", DEFAULT_APP_CONFIG.SOASerial, cfg.SOASerial)
	}
	if cfg.TTL != DEFAULT_APP_CONFIG.TTL {
		t.Errorf("expected TTL=%d, got %d", DEFAULT_APP_CONFIG.TTL, cfg.TTL)
	}
}

func TestValidateTransports(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		t.Fatalf("registerValidation returned error: %v", err)
	}

	cfg := DEFAULT_APP_CONFIG
	cfg.EnableUDP = false
	cfg.EnableTCP = false
	if err := validate.Struct(&cfg); err == nil {
		t.Fatal("expected validation error with both transports disabled, got nil")
	}

	cfg.EnableTCP = true
	if err := validate.Struct(&cfg); err != nil {
		t.Fatalf("expected TCP-only config to validate, got %v", err)
	}
}
