package engage

import (
	"fmt"
	"time"

	"github.com/david/grant-tracker/internal/listing"
	"github.com/david/grant-tracker/internal/models"
)

// GrantViewConfig binds the grant/tracked view fields to ViewModel
// extractors. The view parameter selects which registry entry the config
// answers to ("grants" or "tracked").
func GrantViewConfig(view string) listing.Config[models.ViewModel] {
	return listing.Config[models.ViewModel]{
		View: view,
		SearchText: func(vm models.ViewModel) []string {
			out := []string{vm.Title, vm.Summary, vm.OrganizationName}
			return append(out, vm.Categories...)
		},
		NameSets: map[string]func(models.ViewModel) []string{
			"categories": func(vm models.ViewModel) []string { return vm.Categories },
			"locations":  func(vm models.ViewModel) []string { return vm.Locations },
		},
		Scalars: map[string]func(models.ViewModel) string{
			"grant_type": func(vm models.ViewModel) string { return vm.GrantType },
		},
		DueDate: func(vm models.ViewModel) *time.Time { return vm.DueDate },
		Name:    func(vm models.ViewModel) string { return vm.Title },
		Amount:  func(vm models.ViewModel) float64 { return vm.AmountValue },
	}
}

// OrganizationViewConfig binds the funder/nonprofit list views to
// Organization extractors.
func OrganizationViewConfig(view string) listing.Config[models.Organization] {
	return listing.Config[models.Organization]{
		View: view,
		SearchText: func(org models.Organization) []string {
			return []string{org.Name, org.Slug}
		},
		Name:   func(org models.Organization) string { return org.Name },
		Amount: func(models.Organization) float64 { return 0 },
	}
}

// ValidateViewConfigs checks every config this package builds against the
// registry. Called once at startup; a failure here is a defect, not a
// runtime condition to tolerate.
func ValidateViewConfigs(reg *listing.Registry) error {
	for _, view := range []string{"grants", "tracked"} {
		if err := GrantViewConfig(view).Validate(reg); err != nil {
			return fmt.Errorf("grant view config: %w", err)
		}
	}
	for _, view := range []string{"funders", "nonprofits"} {
		if err := OrganizationViewConfig(view).Validate(reg); err != nil {
			return fmt.Errorf("organization view config: %w", err)
		}
	}
	return nil
}
