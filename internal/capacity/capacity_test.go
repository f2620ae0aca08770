package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
)

func TestAdmit(t *testing.T) {
	tests := []struct {
		name    string
		current int
		limit   int
		wantErr bool
	}{
		{"empty", 0, 2, false},
		{"one slot left", 1, 2, false},
		{"at limit", 2, 2, true},
		{"over limit", 3, 2, true},
		{"unlimited", 500, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Admit(tt.current, tt.limit, apperr.GardenFull)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.GardenFull, apperr.KindOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAdmitEventKind(t *testing.T) {
	err := Admit(1, 1, apperr.EventFull)
	assert.True(t, apperr.Is(err, apperr.EventFull))
}

func TestMaxMembers(t *testing.T) {
	n, err := MaxMembers(nil)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMaxMembers, n)

	five := 5
	n, err = MaxMembers(&five)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	zero := 0
	_, err = MaxMembers(&zero)
	assert.True(t, apperr.Is(err, apperr.ValidationFailed))
}

func TestNeedsAttendeeCheck(t *testing.T) {
	assert.True(t, NeedsAttendeeCheck("", models.RSVPAttending))
	assert.True(t, NeedsAttendeeCheck(models.RSVPDeclined, models.RSVPAttending))
	assert.False(t, NeedsAttendeeCheck(models.RSVPAttending, models.RSVPAttending))
	assert.False(t, NeedsAttendeeCheck(models.RSVPAttending, models.RSVPDeclined))
	assert.False(t, NeedsAttendeeCheck("", models.RSVPMaybe))
}
