package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/models"
)

// SeedUser inserts an active user with the given platform role and returns its identity.
// It panics on failure; it is meant for test setup.
func (s *Store) SeedUser(username string, role models.Role) models.Identity {
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	if err := s.Users().Create(context.Background(), u); err != nil {
		panic(err)
	}
	return models.Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}

// SeedGarden inserts an active garden owned by owner, who becomes its coordinator.
func (s *Store) SeedGarden(owner models.Identity, maxMembers int) uuid.UUID {
	ctx := context.Background()
	g := &models.Garden{Name: "Garden", Location: "Somewhere", MaxMembers: maxMembers, CreatedBy: owner.ID}
	if err := s.Gardens().Create(ctx, g); err != nil {
		panic(err)
	}
	s.SeedMember(owner, g.ID, models.GardenRoleCoordinator)
	return g.ID
}

// SeedMember inserts an active membership.
func (s *Store) SeedMember(who models.Identity, gardenID uuid.UUID, role models.GardenRole) {
	m := &models.Membership{UserID: who.ID, GardenID: gardenID, Role: role}
	if err := s.Memberships().Insert(context.Background(), m); err != nil {
		panic(err)
	}
}
