package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	now := time.Now()
	project := NewProject("proj1", "Test Project", now)

	assert.Equal(t, "proj1", project.ID)
	assert.Equal(t, "Test Project", project.Name)
	assert.Equal(t, now, project.CreatedAt)
	assert.Zero(t, project.ActualSpend)
}

func TestValidateProject(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		project *Project
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid project",
			project: &Project{
				ID:        "proj1",
				Name:      "Test Project",
				CreatedAt: now,
			},
			wantErr: false,
		},
		{
			name:    "nil project",
			project: nil,
			wantErr: true,
			errMsg:  "nil",
		},
		{
			name: "missing ID",
			project: &Project{
				Name:      "Test Project",
				CreatedAt: now,
			},
			wantErr: true,
			errMsg:  "ID",
		},
		{
			name: "missing Name",
			project: &Project{
				ID:        "proj1",
				CreatedAt: now,
			},
			wantErr: true,
			errMsg:  "Name",
		},
		{
			name: "negative budget",
			project: &Project{
				ID:        "proj1",
				Name:      "Test Project",
				Budget:    -100,
				CreatedAt: now,
			},
			wantErr: true,
			errMsg:  "Budget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProject(tt.project)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
