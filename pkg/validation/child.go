package validation

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// characters that tend to break downstream rendering of names (report
// templates, dashboard widgets)
const structuralNameChars = `[]{}<>\`

// ValidateChild classifies a child record submission into blocking errors and
// advisory warnings. On update, required-field checks are skipped so that
// partial payloads stay acceptable.
func (s *Service) ValidateChild(child clinicalTypes.Child, isUpdate bool) clinicalTypes.ValidationResult {
	result := clinicalTypes.NewValidationResult()
	now := s.now()

	// name
	if child.Name == "" {
		if !isUpdate {
			result.AddError("name is required")
		}
	} else {
		nameLen := len([]rune(child.Name))
		if nameLen < MIN_NAME_LENGTH || nameLen > MAX_NAME_LENGTH {
			result.AddError(fmt.Sprintf("name must be between %d and %d characters", MIN_NAME_LENGTH, MAX_NAME_LENGTH))
		}
		if strings.ContainsAny(child.Name, structuralNameChars) {
			result.AddWarning("name contains characters that may break rendering")
		}
	}

	// date of birth and derived age
	if child.DateOfBirth == 0 {
		if !isUpdate {
			result.AddError("date of birth is required")
		}
	} else if child.DateOfBirth > now.UnixMilli() {
		result.AddError("date of birth is in the future")
	} else {
		age := AgeFromDateOfBirth(child.DateOfBirth, now)
		if age < clinicalTypes.SCREENING_MIN_AGE || age >= clinicalTypes.SCREENING_MAX_AGE {
			result.AddWarning(fmt.Sprintf("age %.1f is outside the screening range [%.0f, %.0f)", age, clinicalTypes.SCREENING_MIN_AGE, clinicalTypes.SCREENING_MAX_AGE))
		}
		if child.AgeMonths != nil {
			derivedMonths := age * 12
			if math.Abs(derivedMonths-float64(*child.AgeMonths)) > AGE_MONTHS_TOLERANCE {
				result.AddWarning(fmt.Sprintf("age in months (%d) disagrees with date of birth (%.1f months)", *child.AgeMonths, derivedMonths))
			}
		}
	}

	// study group vs severity level
	switch child.Group {
	case clinicalTypes.GROUP_ASD:
		if child.ASDLevel == "" {
			result.AddWarning("ASD group without severity level")
		}
	case clinicalTypes.GROUP_TYPICALLY_DEVELOPING:
		if child.ASDLevel != "" {
			result.AddWarning("typically developing group should not carry a severity level")
		}
	}

	// clinician references may be entered manually, so a dead reference is
	// never blocking
	if child.ClinicianID != "" {
		if _, err := s.store.GetClinicianByID(child.ClinicianID); err != nil {
			result.AddWarning(fmt.Sprintf("referenced clinician %s could not be found", child.ClinicianID))
		}
	}

	// duplicate child codes are advisory only: the store offers no native
	// uniqueness, and the check runs on create only
	if !isUpdate && child.ChildCode != "" {
		existing, err := s.store.FindChildrenByChildCode(child.ChildCode)
		if err != nil {
			slog.Debug("skipping duplicate child code check", slog.String("error", err.Error()))
		} else if len(existing) > 0 {
			result.AddWarning(fmt.Sprintf("child code %s already exists", child.ChildCode))
		}
	}

	return result
}
