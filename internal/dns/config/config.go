package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Bind is the local address to listen on. Empty means all interfaces.
	Bind string `koanf:"bind" validate:"omitempty,ip"`

	// Port is the network port the DNS server will bind to.
	Port int `koanf:"port" validate:"required,gte=1,lt=65535"`

	// EnableUDP and EnableTCP select the transports to serve. At least one
	// must be enabled.
	EnableUDP bool `koanf:"enable_udp"`
	EnableTCP bool `koanf:"enable_tcp"`

	// Zone is the apex name this server is authoritative for.
	Zone string `koanf:"zone" validate:"required,fqdn"`

	// SOA fields published at the zone apex.
	SOAPrimary string `koanf:"soa_primary" validate:"required,fqdn"`
	SOAMailbox string `koanf:"soa_mailbox" validate:"required,fqdn"`
	SOASerial  uint32 `koanf:"soa_serial" validate:"required"`
	SOARefresh uint32 `koanf:"soa_refresh" validate:"required,gte=1"`
	SOARetry   uint32 `koanf:"soa_retry" validate:"required,gte=1"`
	SOAExpire  uint32 `koanf:"soa_expire" validate:"required,gte=1"`

	// SOAMinimum is the negative-caching TTL advertised in the SOA record.
	SOAMinimum uint32 `koanf:"soa_minimum" validate:"required,gte=1"`

	// NameServers is the list of names published as NS records at the apex.
	NameServers []string `koanf:"nameservers" validate:"required,min=1,dive,fqdn"`

	// TTL applies to every positive answer the server emits.
	TTL uint32 `koanf:"ttl" validate:"required,gte=1"`

	// JournalDB is the path of the query journal database. Empty disables
	// journaling entirely.
	JournalDB string `koanf:"journal_db"`

	// JournalCacheSize caps the in-memory journal entry cache.
	JournalCacheSize int `koanf:"journal_cache_size" validate:"gte=0"`
}

// DEFAULT_APP_CONFIG defines the default application configuration: a
// production listener on port 53, both transports enabled, the built-in
// sinkhole zone, and journaling off.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:              "prod",
	LogLevel:         "info",
	Bind:             "",
	Port:             53,
	EnableUDP:        true,
	EnableTCP:        true,
	Zone:             "romulan.zone",
	SOAPrimary:       "blackhole.romulan.zone",
	SOAMailbox:       "hostmaster.romulan.zone",
	SOASerial:        202502191,
	SOARefresh:       7200,
	SOARetry:         900,
	SOAExpire:        1209600,
	SOAMinimum:       86400,
	NameServers:      []string{"blackhole.romulan.zone"},
	TTL:              60,
	JournalDB:        "",
	JournalCacheSize: 1024,
}

// validateTransports rejects a configuration with both transports disabled,
// since the server would have nothing to serve.
func validateTransports(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(AppConfig)
	if !cfg.EnableUDP && !cfg.EnableTCP {
		sl.ReportError(cfg.EnableUDP, "EnableUDP", "enable_udp", "transport_required", "")
	}
}

// envLoader is a function that loads environment variables with the prefix "DNS_".
// It transforms the keys to lowercase and removes the prefix.
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	// Load environment variables with prefix "DNS_".
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "DNS_"))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf instance
// using the structs provider and the DEFAULT_APP_CONFIG struct. It returns an error
// if loading fails.
var defaultLoader = func(k *koanf.Koanf) error {
	// Load default values using structs provider.
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation attaches the struct-level transport check to the
// provided validator. It can be mocked in tests.
var registerValidation = func(v *validator.Validate) error {
	v.RegisterStructValidation(validateTransports, AppConfig{})
	return nil
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	// Load default values using structs provider.
	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	// Load environment variables with prefix "DNS_".
	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	// Unmarshal the loaded configuration into AppConfig struct.
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Validate the configuration.
	validate := validator.New(validator.WithRequiredStructEnabled())

	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
