package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyChunkSize        = "chunk_size"
	KeyChunkOverlap     = "chunk_overlap"
	KeyTopK             = "top_k"
	KeyEmbeddingModel   = "embedding_model_identifier"
	KeyEmbedBaseURL     = "embedding.base_url"
	KeyEmbedAPIKey      = "embedding.api_key"
	KeyEmbedRateLimit   = "embedding.rate_limit"
	KeyQueryCacheSize   = "query_cache_size"
	KeyMaxChunks        = "max_chunks"
	KeyFetchTimeout     = "fetch.timeout"
	KeyFetchMaxBytes    = "fetch.max_bytes"
	envOpenAIAPIKey     = "OPENAI_API_KEY"
	envOllamaHost       = "OLLAMA_HOST"
	maskedSecret        = "********"
	embeddingModelCheck = "embedding_model"
)

// setting binds a config key to a Settings field.
type setting struct {
	key    string
	field  string
	secret bool
	// parse converts text to the value stored in config.
	parse func(string) (any, error)
	// apply copies a stored value into settings.
	apply func(*domain.Settings, any) error
	// format renders the effective value.
	format func(domain.Settings) string
}

// SettingsService resolves settings from defaults, the config file and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
	validate    *validator.Validate
	settings    []setting
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(embeddingModelCheck, func(fl validator.FieldLevel) bool {
		_, err := domain.ParseEmbeddingModel(fl.Field().String())
		return err == nil
	})

	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
		validate:    v,
		settings:    knownSettings(),
	}
}

// SetEnvLookup replaces the environment lookup, for tests.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	s.lookupEnv = lookup
}

// Get returns the validated settings.
// Stored values that cannot be parsed are ignored with a warning.
func (s *SettingsService) Get() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	for _, def := range s.settings {
		raw, ok := s.configStore.Get(def.key)
		if !ok {
			continue
		}
		if err := def.apply(&settings, raw); err != nil {
			logger.Warn("ignoring %s in %s: %v", def.key, s.configStore.Path(), err)
		}
	}

	s.applyEnv(&settings)

	if err := s.Validate(settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// applyEnv fills values the config file left empty.
func (s *SettingsService) applyEnv(settings *domain.Settings) {
	model, err := domain.ParseEmbeddingModel(settings.EmbeddingModel)
	if err != nil {
		return
	}
	switch model.Provider {
	case domain.AIProviderOpenAI:
		if settings.EmbeddingAPIKey == "" {
			if key, ok := s.lookupEnv(envOpenAIAPIKey); ok {
				settings.EmbeddingAPIKey = key
			}
		}
	case domain.AIProviderOllama:
		if settings.EmbeddingBaseURL == "" {
			if host, ok := s.lookupEnv(envOllamaHost); ok && host != "" {
				settings.EmbeddingBaseURL = normaliseHost(host)
			}
		}
	}
}

// normaliseHost accepts OLLAMA_HOST values without a scheme.
func normaliseHost(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "http://" + host
}

// Validate checks settings against their constraints.
func (s *SettingsService) Validate(settings domain.Settings) error {
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, s.describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(problems, "; "))
}

func (s *SettingsService) describe(fe validator.FieldError) string {
	name := s.keyFor(fe.StructField())
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", name, s.keyFor(fe.Param()))
	case "required":
		return name + " is required"
	case "url":
		return name + " must be a URL"
	case embeddingModelCheck:
		return fmt.Sprintf("%s %q must be <provider>[:<model>] with provider local, ollama or openai",
			name, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

func (s *SettingsService) keyFor(field string) string {
	for _, def := range s.settings {
		if def.field == field {
			return def.key
		}
	}
	return field
}

// Set parses, validates and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	def, ok := s.lookup(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidArgument, key, strings.Join(s.Keys(), ", "))
	}

	parsed, err := def.parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidArgument, key, err)
	}

	// Validate the whole settings value with the change applied.
	current, _ := s.Get()
	if err := def.apply(&current, parsed); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidArgument, key, err)
	}
	if err := s.Validate(current); err != nil {
		return err
	}

	if err := s.configStore.Set(def.key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", def.key, err)
	}
	return nil
}

// Reset removes a stored setting.
func (s *SettingsService) Reset(key string) error {
	def, ok := s.lookup(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidArgument, key, strings.Join(s.Keys(), ", "))
	}
	if err := s.configStore.Unset(def.key); err != nil {
		return fmt.Errorf("reset %s: %w", def.key, err)
	}
	return nil
}

// List returns every known key with its effective value.
func (s *SettingsService) List() ([]domain.SettingEntry, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SettingEntry, 0, len(s.settings))
	for _, def := range s.settings {
		value := def.format(settings)
		if def.secret && value != "" {
			value = maskedSecret
		}
		_, stored := s.configStore.Get(def.key)
		entries = append(entries, domain.SettingEntry{
			Key:       def.key,
			Value:     value,
			IsDefault: !stored,
		})
	}
	return entries, nil
}

// Keys returns the recognised configuration keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(s.settings))
	for i, def := range s.settings {
		keys[i] = def.key
	}
	return keys
}

func (s *SettingsService) lookup(key string) (setting, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, def := range s.settings {
		if def.key == key {
			return def, true
		}
	}
	return setting{}, false
}

func knownSettings() []setting {
	return []setting{
		intSetting(KeyChunkSize, "ChunkSize",
			func(s *domain.Settings, v int) { s.ChunkSize = v },
			func(s domain.Settings) int { return s.ChunkSize }),
		intSetting(KeyChunkOverlap, "ChunkOverlap",
			func(s *domain.Settings, v int) { s.ChunkOverlap = v },
			func(s domain.Settings) int { return s.ChunkOverlap }),
		intSetting(KeyTopK, "TopK",
			func(s *domain.Settings, v int) { s.TopK = v },
			func(s domain.Settings) int { return s.TopK }),
		stringSetting(KeyEmbeddingModel, "EmbeddingModel", false,
			func(s *domain.Settings, v string) { s.EmbeddingModel = v },
			func(s domain.Settings) string { return s.EmbeddingModel }),
		stringSetting(KeyEmbedBaseURL, "EmbeddingBaseURL", false,
			func(s *domain.Settings, v string) { s.EmbeddingBaseURL = v },
			func(s domain.Settings) string { return s.EmbeddingBaseURL }),
		stringSetting(KeyEmbedAPIKey, "EmbeddingAPIKey", true,
			func(s *domain.Settings, v string) { s.EmbeddingAPIKey = v },
			func(s domain.Settings) string { return s.EmbeddingAPIKey }),
		{
			key:   KeyEmbedRateLimit,
			field: "EmbeddingRateLimit",
			parse: func(text string) (any, error) {
				return strconv.ParseFloat(text, 64)
			},
			apply: func(s *domain.Settings, raw any) error {
				v, err := toFloat(raw)
				if err != nil {
					return err
				}
				s.EmbeddingRateLimit = v
				return nil
			},
			format: func(s domain.Settings) string {
				return strconv.FormatFloat(s.EmbeddingRateLimit, 'g', -1, 64)
			},
		},
		intSetting(KeyQueryCacheSize, "QueryCacheSize",
			func(s *domain.Settings, v int) { s.QueryCacheSize = v },
			func(s domain.Settings) int { return s.QueryCacheSize }),
		intSetting(KeyMaxChunks, "MaxChunks",
			func(s *domain.Settings, v int) { s.MaxChunks = v },
			func(s domain.Settings) int { return s.MaxChunks }),
		{
			key:   KeyFetchTimeout,
			field: "FetchTimeout",
			parse: func(text string) (any, error) {
				if _, err := time.ParseDuration(text); err != nil {
					return nil, err
				}
				return text, nil
			},
			apply: func(s *domain.Settings, raw any) error {
				d, err := time.ParseDuration(fmt.Sprint(raw))
				if err != nil {
					return err
				}
				s.FetchTimeout = d
				return nil
			},
			format: func(s domain.Settings) string { return s.FetchTimeout.String() },
		},
		intSetting(KeyFetchMaxBytes, "MaxFetchBytes",
			func(s *domain.Settings, v int) { s.MaxFetchBytes = int64(v) },
			func(s domain.Settings) int { return int(s.MaxFetchBytes) }),
	}
}

func intSetting(key, field string, set func(*domain.Settings, int), get func(domain.Settings) int) setting {
	return setting{
		key:   key,
		field: field,
		parse: func(text string) (any, error) {
			v, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		apply: func(s *domain.Settings, raw any) error {
			v, err := toInt(raw)
			if err != nil {
				return err
			}
			set(s, v)
			return nil
		},
		format: func(s domain.Settings) string { return strconv.Itoa(get(s)) },
	}
}

func stringSetting(
	key, field string, secret bool,
	set func(*domain.Settings, string), get func(domain.Settings) string,
) setting {
	return setting{
		key:    key,
		field:  field,
		secret: secret,
		parse:  func(text string) (any, error) { return text, nil },
		apply: func(s *domain.Settings, raw any) error {
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("expected a string, got %T", raw)
			}
			set(s, v)
			return nil
		},
		format: get,
	}
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("expected an integer, got %T", raw)
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}
