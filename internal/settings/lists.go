package settings

import "context"

func replaceAt[T any](items []T, list List, index int, item T) error {
	if index < 0 || index >= len(items) {
		return &IndexError{List: list, Index: index, Len: len(items)}
	}
	items[index] = item
	return nil
}

func removeAt[T any](items []T, list List, index int) ([]T, error) {
	if index < 0 || index >= len(items) {
		return items, &IndexError{List: list, Index: index, Len: len(items)}
	}
	return append(items[:index], items[index+1:]...), nil
}

// AddExecutionPlan appends plan.
func (s *Store) AddExecutionPlan(ctx context.Context, plan ExecutionPlan) error {
	_, err := s.Update(ctx, func(doc *Settings) error {
		doc.ExecutionPlans = append(doc.ExecutionPlans, plan)
		return nil
	})
	return err
}

// UpdateExecutionPlan replaces the plan at index.
func (s *Store) UpdateExecutionPlan(ctx context.Context, index int, plan ExecutionPlan) error {
	_, err := s.Update(ctx, func(doc *Settings) error {
		return replaceAt(doc.ExecutionPlans, ExecutionPlans, index, plan)
	})
	return err
}

// RemoveExecutionPlan deletes the plan at index, preserving order.
func (s *Store) RemoveExecutionPlan(ctx context.Context, index int) error {
	_, err := s.Update(ctx, func(doc *Settings) (err error) {
		doc.ExecutionPlans, err = removeAt(doc.ExecutionPlans, ExecutionPlans, index)
		return err
	})
	return err
}

// AddChromeProfile appends profile.
func (s *Store) AddChromeProfile(ctx context.Context, profile ChromeProfile) error {
	_, err := s.Update(ctx, func(doc *Settings) error {
		doc.ChromeProfiles = append(doc.ChromeProfiles, profile)
		return nil
	})
	return err
}

// UpdateChromeProfile replaces the profile at index.
func (s *Store) UpdateChromeProfile(ctx context.Context, index int, profile ChromeProfile) error {
	_, err := s.Update(ctx, func(doc *Settings) error {
		return replaceAt(doc.ChromeProfiles, ChromeProfiles, index, profile)
	})
	return err
}

// RemoveChromeProfile deletes the profile at index, preserving order.
func (s *Store) RemoveChromeProfile(ctx context.Context, index int) error {
	_, err := s.Update(ctx, func(doc *Settings) (err error) {
		doc.ChromeProfiles, err = removeAt(doc.ChromeProfiles, ChromeProfiles, index)
		return err
	})
	return err
}

// AddCustomApp appends app.
func (s *Store) AddCustomApp(ctx context.Context, app CustomApp) error {
	_, err := s.Update(ctx, func(doc *Settings) error {
		doc.CustomApps = append(doc.CustomApps, app)
		return nil
	})
	return err
}

// UpdateCustomApp replaces the app at index.
func (s *Store) UpdateCustomApp(ctx context.Context, index int, app CustomApp) error {
	_, err := s.Update(ctx, func(doc *Settings) error {
		return replaceAt(doc.CustomApps, CustomApps, index, app)
	})
	return err
}

// RemoveCustomApp deletes the app at index, preserving order.
func (s *Store) RemoveCustomApp(ctx context.Context, index int) error {
	_, err := s.Update(ctx, func(doc *Settings) (err error) {
		doc.CustomApps, err = removeAt(doc.CustomApps, CustomApps, index)
		return err
	})
	return err
}
