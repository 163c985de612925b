package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"Session", &Session{}, "sessions"},
		{"Vessel", &Vessel{}, "vessels"},
		{"VesselState", &VesselState{}, "vessel_states"},
		{"SessionPerformance", &SessionPerformance{}, "session_performances"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels_CoversAllTables(t *testing.T) {
	assert.Len(t, DatabaseModels, 4)
}
