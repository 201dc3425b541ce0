// Package preferences persists the user's settings blob and saved report configurations.
package preferences

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/pkg/model"
)

// State keys of the durable key-value store.
const (
	SettingsKey      = "settings"
	ReportConfigsKey = "reportConfigs"
)

// StateStore persists JSON-serialisable values by key.
type StateStore interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, value any) error
}

// StructValidator validates tagged structs.
type StructValidator interface {
	Struct(s any) error
}

// Service reads and writes preferences.
type Service struct {
	mu        sync.Mutex
	store     StateStore
	validator StructValidator
	now       func() time.Time
	newID     func() string
}

// NewService creates a preferences service over store.
func NewService(store StateStore, v StructValidator) *Service {
	return &Service{
		store:     store,
		validator: v,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Settings returns the saved settings, or the defaults when none were saved.
// Fields missing from an older saved blob keep their default values.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()
	if _, err := s.store.Load(ctx, SettingsKey, &settings); err != nil {
		return model.Settings{}, fmt.Errorf("load %s: %w", SettingsKey, err)
	}
	return settings, nil
}

// SaveSettings validates and stores the whole settings blob.
func (s *Service) SaveSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	if err := s.validator.Struct(settings); err != nil {
		return model.Settings{}, err
	}
	if err := s.store.Save(ctx, SettingsKey, settings); err != nil {
		return model.Settings{}, fmt.Errorf("save %s: %w", SettingsKey, err)
	}
	return settings, nil
}

// ReportConfigs lists saved report configurations, oldest first.
func (s *Service) ReportConfigs(ctx context.Context) ([]model.ReportConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadConfigs(ctx)
}

// SaveReportConfig assigns an id and creation time to cfg and appends it.
func (s *Service) SaveReportConfig(ctx context.Context, cfg model.ReportConfig) (model.ReportConfig, error) {
	if err := s.validator.Struct(cfg); err != nil {
		return model.ReportConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	configs, err := s.loadConfigs(ctx)
	if err != nil {
		return model.ReportConfig{}, err
	}
	cfg.ID = s.newID()
	cfg.CreatedAt = s.now().UTC()
	configs = append(configs, cfg)
	if err := s.store.Save(ctx, ReportConfigsKey, configs); err != nil {
		return model.ReportConfig{}, fmt.Errorf("save %s: %w", ReportConfigsKey, err)
	}
	return cfg, nil
}

// DeleteReportConfig removes the configuration with the given id.
func (s *Service) DeleteReportConfig(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	configs, err := s.loadConfigs(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.ReportConfig, 0, len(configs))
	for _, c := range configs {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(configs) {
		return apperr.NotFound("report config not found").WithOp("preferences.DeleteReportConfig")
	}
	if err := s.store.Save(ctx, ReportConfigsKey, kept); err != nil {
		return fmt.Errorf("save %s: %w", ReportConfigsKey, err)
	}
	return nil
}

func (s *Service) loadConfigs(ctx context.Context) ([]model.ReportConfig, error) {
	var configs []model.ReportConfig
	if _, err := s.store.Load(ctx, ReportConfigsKey, &configs); err != nil {
		return nil, fmt.Errorf("load %s: %w", ReportConfigsKey, err)
	}
	if configs == nil {
		configs = []model.ReportConfig{}
	}
	return configs, nil
}

// ApplyDefaultCity returns the city the listing filter should use after a
// settings change: a saved default other than "All" replaces current.
func ApplyDefaultCity(settings model.Settings, current string) string {
	if settings.DefaultCity != "" && settings.DefaultCity != "All" {
		return settings.DefaultCity
	}
	return current
}
