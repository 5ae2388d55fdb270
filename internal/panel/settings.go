package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"osassist/internal/logging"
	"osassist/internal/settings"
)

// ErrInvalidInput wraps request payloads that cannot be decoded.
var ErrInvalidInput = errors.New("invalid input")

// SettingsPath returns where the settings document lives.
func (s *Service) SettingsPath() string {
	return s.settings.Path()
}

// LoadSettings returns the settings document or defaults.
func (s *Service) LoadSettings() (settings.Settings, error) {
	return s.settings.Load()
}

// SaveSettings replaces the whole settings document.
func (s *Service) SaveSettings(ctx context.Context, doc settings.Settings) (settings.SaveResult, error) {
	result, err := s.settings.Save(ctx, doc)
	if err != nil {
		return settings.SaveResult{}, err
	}
	s.logger.Info("settings saved", logging.String("path", result.Path))
	return result, nil
}

// ExportSettings renders the settings document in format.
func (s *Service) ExportSettings(format settings.Format) ([]byte, error) {
	return s.settings.Export(format)
}

// ImportSettings replaces the settings document with data.
func (s *Service) ImportSettings(ctx context.Context, data []byte, format settings.Format) (settings.SaveResult, error) {
	result, err := s.settings.Import(ctx, data, format)
	if err != nil {
		if errors.Is(err, settings.ErrMalformed) {
			return settings.SaveResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return settings.SaveResult{}, err
	}
	s.logger.Info("settings imported", logging.String("path", result.Path), logging.String("format", string(format)))
	return result, nil
}

// AddListItem appends the JSON-encoded item to list.
func (s *Service) AddListItem(ctx context.Context, list settings.List, item json.RawMessage) error {
	var err error
	switch list {
	case settings.ExecutionPlans:
		var plan settings.ExecutionPlan
		if err = decodeItem(item, &plan); err == nil {
			err = s.settings.AddExecutionPlan(ctx, plan)
		}
	case settings.ChromeProfiles:
		var profile settings.ChromeProfile
		if err = decodeItem(item, &profile); err == nil {
			err = s.settings.AddChromeProfile(ctx, profile)
		}
	case settings.CustomApps:
		var app settings.CustomApp
		if err = decodeItem(item, &app); err == nil {
			err = s.settings.AddCustomApp(ctx, app)
		}
	default:
		err = unknownList(list)
	}
	return s.logListChange(err, "added", list, -1)
}

// UpdateListItem replaces the entry at index in list.
func (s *Service) UpdateListItem(ctx context.Context, list settings.List, index int, item json.RawMessage) error {
	var err error
	switch list {
	case settings.ExecutionPlans:
		var plan settings.ExecutionPlan
		if err = decodeItem(item, &plan); err == nil {
			err = s.settings.UpdateExecutionPlan(ctx, index, plan)
		}
	case settings.ChromeProfiles:
		var profile settings.ChromeProfile
		if err = decodeItem(item, &profile); err == nil {
			err = s.settings.UpdateChromeProfile(ctx, index, profile)
		}
	case settings.CustomApps:
		var app settings.CustomApp
		if err = decodeItem(item, &app); err == nil {
			err = s.settings.UpdateCustomApp(ctx, index, app)
		}
	default:
		err = unknownList(list)
	}
	return s.logListChange(err, "updated", list, index)
}

// RemoveListItem deletes the entry at index in list.
func (s *Service) RemoveListItem(ctx context.Context, list settings.List, index int) error {
	var err error
	switch list {
	case settings.ExecutionPlans:
		err = s.settings.RemoveExecutionPlan(ctx, index)
	case settings.ChromeProfiles:
		err = s.settings.RemoveChromeProfile(ctx, index)
	case settings.CustomApps:
		err = s.settings.RemoveCustomApp(ctx, index)
	default:
		err = unknownList(list)
	}
	return s.logListChange(err, "removed", list, index)
}

func (s *Service) logListChange(err error, verb string, list settings.List, index int) error {
	if err != nil {
		return err
	}
	attrs := []logging.Attr{logging.String("list", string(list))}
	if index >= 0 {
		attrs = append(attrs, logging.Int("index", index))
	}
	s.logger.Info("settings entry "+verb, logging.Args(attrs...)...)
	return nil
}

func decodeItem(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing item", ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func unknownList(list settings.List) error {
	return fmt.Errorf("%w: unknown settings list %q", ErrInvalidInput, list)
}
