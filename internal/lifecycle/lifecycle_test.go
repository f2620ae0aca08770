package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gardenhub/backend/internal/models"
)

func TestModeOf(t *testing.T) {
	soft := []models.Entity{models.EntityGarden, models.EntityDiscussion, models.EntityReply, models.EntityMembership}
	hard := []models.Entity{
		models.EntityEvent, models.EntityAttendee, models.EntityPhoto,
		models.EntityResource, models.EntityGuide, models.EntityStat, models.EntityUser,
	}
	for _, e := range soft {
		assert.Equal(t, SoftDelete, ModeOf(e), e)
	}
	for _, e := range hard {
		assert.Equal(t, HardDelete, ModeOf(e), e)
	}
	assert.Equal(t, "soft_deleted", SoftDelete.String())
}
