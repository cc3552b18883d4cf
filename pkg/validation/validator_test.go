package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

type mockStore struct {
	children   map[string]clinicalTypes.Child
	sessions   map[string]clinicalTypes.Session
	clinicians map[string]clinicalTypes.Clinician
	childCodes map[string][]clinicalTypes.Child

	lookupErr error
}

func (m *mockStore) GetChildByID(childID string) (clinicalTypes.Child, error) {
	if m.lookupErr != nil {
		return clinicalTypes.Child{}, m.lookupErr
	}
	child, ok := m.children[childID]
	if !ok {
		return clinicalTypes.Child{}, errors.New("mongo: no documents in result")
	}
	return child, nil
}

func (m *mockStore) FindChildrenByChildCode(childCode string) ([]clinicalTypes.Child, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.childCodes[childCode], nil
}

func (m *mockStore) GetSessionByID(sessionID string) (clinicalTypes.Session, error) {
	if m.lookupErr != nil {
		return clinicalTypes.Session{}, m.lookupErr
	}
	session, ok := m.sessions[sessionID]
	if !ok {
		return clinicalTypes.Session{}, errors.New("mongo: no documents in result")
	}
	return session, nil
}

func (m *mockStore) GetClinicianByID(clinicianID string) (clinicalTypes.Clinician, error) {
	if m.lookupErr != nil {
		return clinicalTypes.Clinician{}, m.lookupErr
	}
	clinician, ok := m.clinicians[clinicianID]
	if !ok {
		return clinicalTypes.Clinician{}, errors.New("mongo: no documents in result")
	}
	return clinician, nil
}

func newTestService(store *mockStore, now time.Time) *Service {
	s := NewService(store, clinicalTypes.DefaultRiskThresholds())
	s.now = func() time.Time { return now }
	return s
}

func hasMessageContaining(msgs []string, substr string) bool {
	for _, msg := range msgs {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func dobForAge(now time.Time, ageYears float64) int64 {
	return now.UnixMilli() - int64(ageYears*MS_PER_YEAR)
}

func TestValidateChild(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &mockStore{
		clinicians: map[string]clinicalTypes.Clinician{
			"clin-1": {Name: "Dr. Perera"},
		},
		childCodes: map[string][]clinicalTypes.Child{
			"CH-001": {{Name: "Existing"}},
		},
	}
	s := newTestService(store, now)

	t.Run("valid child in screening range", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: dobForAge(now, 4.0),
			Gender:      "male",
			Language:    "sinhala",
			Group:       clinicalTypes.GROUP_TYPICALLY_DEVELOPING,
		}, false)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if len(result.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", result.Warnings)
		}
	})

	t.Run("date of birth one day in the future", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: now.Add(24 * time.Hour).UnixMilli(),
		}, false)
		if result.Valid {
			t.Error("expected invalid")
		}
		if !hasMessageContaining(result.Errors, "future") {
			t.Errorf("expected error about future date, got %v", result.Errors)
		}
	})

	t.Run("age 8 warns but stays valid", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: dobForAge(now, 8.0),
		}, false)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if !hasMessageContaining(result.Warnings, "screening range") {
			t.Errorf("expected screening range warning, got %v", result.Warnings)
		}
	})

	t.Run("missing name on create", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{DateOfBirth: dobForAge(now, 4)}, false)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("missing name on update is tolerated", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{DateOfBirth: dobForAge(now, 4)}, true)
		if !result.Valid {
			t.Errorf("expected valid on update, got errors: %v", result.Errors)
		}
	})

	t.Run("name too short", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{Name: "A", DateOfBirth: dobForAge(now, 4)}, false)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("structural characters warn only", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{Name: "Amal [test]", DateOfBirth: dobForAge(now, 4)}, false)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if !hasMessageContaining(result.Warnings, "rendering") {
			t.Errorf("expected rendering warning, got %v", result.Warnings)
		}
	})

	t.Run("asd group without severity level", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: dobForAge(now, 4),
			Group:       clinicalTypes.GROUP_ASD,
		}, false)
		if !hasMessageContaining(result.Warnings, "severity") {
			t.Errorf("expected severity warning, got %v", result.Warnings)
		}
	})

	t.Run("typically developing with severity level", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: dobForAge(now, 4),
			Group:       clinicalTypes.GROUP_TYPICALLY_DEVELOPING,
			ASDLevel:    "level_2",
		}, false)
		if !hasMessageContaining(result.Warnings, "severity") {
			t.Errorf("expected severity warning, got %v", result.Warnings)
		}
	})

	t.Run("age months disagreement", func(t *testing.T) {
		months := 60
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: dobForAge(now, 4.0), // 48 months
			AgeMonths:   &months,
		}, false)
		if !hasMessageContaining(result.Warnings, "months") {
			t.Errorf("expected months warning, got %v", result.Warnings)
		}
	})

	t.Run("unknown clinician reference warns", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: dobForAge(now, 4),
			ClinicianID: "clin-unknown",
		}, false)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if !hasMessageContaining(result.Warnings, "clinician") {
			t.Errorf("expected clinician warning, got %v", result.Warnings)
		}
	})

	t.Run("duplicate child code on create", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: dobForAge(now, 4),
			ChildCode:   "CH-001",
		}, false)
		if !hasMessageContaining(result.Warnings, "already exists") {
			t.Errorf("expected duplicate warning, got %v", result.Warnings)
		}
	})

	t.Run("duplicate child code ignored on update", func(t *testing.T) {
		result := s.ValidateChild(clinicalTypes.Child{
			Name:        "Amal",
			DateOfBirth: dobForAge(now, 4),
			ChildCode:   "CH-001",
		}, true)
		if hasMessageContaining(result.Warnings, "already exists") {
			t.Errorf("duplicate check should not run on update, got %v", result.Warnings)
		}
	})
}

func TestValidateSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &mockStore{
		children: map[string]clinicalTypes.Child{
			"child-4y": {Name: "Amal", DateOfBirth: dobForAge(now, 4.0)},
			"child-6y": {Name: "Nimal", DateOfBirth: dobForAge(now, 6.0)},
		},
	}
	s := newTestService(store, now)

	start := now.Add(-10 * time.Minute).UnixMilli()
	end := now.Add(-9 * time.Minute).UnixMilli()

	t.Run("valid session", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: clinicalTypes.SESSION_TYPE_INHIBITION_GAME,
			StartTime:   start,
			EndTime:     end,
			GameResults: map[string]interface{}{"score": 12},
		}, false)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if len(result.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", result.Warnings)
		}
	})

	t.Run("missing child id on create", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			SessionType: clinicalTypes.SESSION_TYPE_MANUAL,
			StartTime:   start,
		}, false)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("unknown child downgraded to warning", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-not-synced",
			SessionType: clinicalTypes.SESSION_TYPE_MANUAL,
			StartTime:   start,
		}, false)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if !hasMessageContaining(result.Warnings, "not found") {
			t.Errorf("expected pending-sync warning, got %v", result.Warnings)
		}
	})

	t.Run("store failure downgraded to warning", func(t *testing.T) {
		failing := &mockStore{lookupErr: errors.New("connection refused")}
		sf := newTestService(failing, now)
		result := sf.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: clinicalTypes.SESSION_TYPE_MANUAL,
			StartTime:   start,
		}, false)
		if !result.Valid {
			t.Errorf("degraded store must not block, got errors: %v", result.Errors)
		}
	})

	t.Run("session type outside age band", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-6y",
			SessionType: clinicalTypes.SESSION_TYPE_INHIBITION_GAME,
			StartTime:   start,
			EndTime:     end,
			GameResults: map[string]interface{}{"score": 12},
		}, false)
		if !hasMessageContaining(result.Warnings, "age-appropriate") {
			t.Errorf("expected age band warning, got %v", result.Warnings)
		}
	})

	t.Run("separator variants are normalized", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-6y",
			SessionType: "Rule-Switch-Game",
			StartTime:   start,
			EndTime:     end,
			GameResults: map[string]interface{}{"score": 3},
		}, false)
		if !result.Valid {
			t.Errorf("expected valid after normalization, got errors: %v", result.Errors)
		}
	})

	t.Run("unrecognized session type", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: "unknown-assessment",
			StartTime:   start,
		}, false)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("end before start", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: clinicalTypes.SESSION_TYPE_MANUAL,
			StartTime:   end,
			EndTime:     start,
		}, false)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("too short duration", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: clinicalTypes.SESSION_TYPE_MANUAL,
			StartTime:   start,
			EndTime:     start + 3000,
		}, false)
		if !hasMessageContaining(result.Warnings, "too short") {
			t.Errorf("expected short duration warning, got %v", result.Warnings)
		}
	})

	t.Run("too long duration", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: clinicalTypes.SESSION_TYPE_MANUAL,
			StartTime:   now.Add(-3 * time.Hour).UnixMilli(),
			EndTime:     now.UnixMilli(),
		}, false)
		if !hasMessageContaining(result.Warnings, "exceeds") {
			t.Errorf("expected long duration warning, got %v", result.Warnings)
		}
	})

	t.Run("risk score out of range", func(t *testing.T) {
		score := 140.0
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: clinicalTypes.SESSION_TYPE_MANUAL,
			StartTime:   start,
			RiskScore:   &score,
		}, false)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("risk level mismatch warns only", func(t *testing.T) {
		score := 85.0
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: clinicalTypes.SESSION_TYPE_MANUAL,
			StartTime:   start,
			RiskScore:   &score,
			RiskLevel:   clinicalTypes.RISK_LEVEL_LOW,
		}, false)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if !hasMessageContaining(result.Warnings, "risk level") {
			t.Errorf("expected risk level warning, got %v", result.Warnings)
		}
	})

	t.Run("game session without game results", func(t *testing.T) {
		result := s.ValidateSession(clinicalTypes.Session{
			ChildID:     "child-4y",
			SessionType: clinicalTypes.SESSION_TYPE_INHIBITION_GAME,
			StartTime:   start,
			EndTime:     end,
		}, false)
		if !hasMessageContaining(result.Warnings, "game results") {
			t.Errorf("expected missing results warning, got %v", result.Warnings)
		}
	})
}

func TestValidateTrial(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &mockStore{
		sessions: map[string]clinicalTypes.Session{
			"session-1": {SessionType: clinicalTypes.SESSION_TYPE_INHIBITION_GAME},
		},
	}
	s := newTestService(store, now)

	base := clinicalTypes.Trial{
		SessionID:      "session-1",
		TrialNumber:    3,
		ReactionTimeMS: 850,
		Timestamp:      now.Add(-time.Hour).UnixMilli(),
	}

	t.Run("valid trial", func(t *testing.T) {
		result := s.ValidateTrial(base)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if len(result.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", result.Warnings)
		}
	})

	t.Run("missing session is fatal", func(t *testing.T) {
		trial := base
		trial.SessionID = "session-gone"
		result := s.ValidateTrial(trial)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("store failure is fatal for trials", func(t *testing.T) {
		failing := &mockStore{lookupErr: errors.New("connection refused")}
		sf := newTestService(failing, now)
		result := sf.ValidateTrial(base)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("trial number below one", func(t *testing.T) {
		trial := base
		trial.TrialNumber = 0
		result := s.ValidateTrial(trial)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("improbably large trial number", func(t *testing.T) {
		trial := base
		trial.TrialNumber = 5000
		result := s.ValidateTrial(trial)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if !hasMessageContaining(result.Warnings, "improbably large") {
			t.Errorf("expected trial number warning, got %v", result.Warnings)
		}
	})

	t.Run("negative reaction time is fatal", func(t *testing.T) {
		trial := base
		trial.ReactionTimeMS = -5
		result := s.ValidateTrial(trial)
		if result.Valid {
			t.Error("expected invalid")
		}
	})

	t.Run("implausibly high reaction time warns", func(t *testing.T) {
		trial := base
		trial.ReactionTimeMS = 50000
		result := s.ValidateTrial(trial)
		if !result.Valid {
			t.Errorf("expected valid, got errors: %v", result.Errors)
		}
		if !hasMessageContaining(result.Warnings, "implausibly high") {
			t.Errorf("expected high reaction time warning, got %v", result.Warnings)
		}
	})

	t.Run("implausibly low reaction time warns", func(t *testing.T) {
		trial := base
		trial.ReactionTimeMS = 40
		result := s.ValidateTrial(trial)
		if !hasMessageContaining(result.Warnings, "implausibly low") {
			t.Errorf("expected low reaction time warning, got %v", result.Warnings)
		}
	})

	t.Run("future timestamp warns", func(t *testing.T) {
		trial := base
		trial.Timestamp = now.Add(time.Hour).UnixMilli()
		result := s.ValidateTrial(trial)
		if !hasMessageContaining(result.Warnings, "future") {
			t.Errorf("expected future timestamp warning, got %v", result.Warnings)
		}
	})

	t.Run("old timestamp warns", func(t *testing.T) {
		trial := base
		trial.Timestamp = now.Add(-400 * 24 * time.Hour).UnixMilli()
		result := s.ValidateTrial(trial)
		if !hasMessageContaining(result.Warnings, "more than a year") {
			t.Errorf("expected old timestamp warning, got %v", result.Warnings)
		}
	})
}
