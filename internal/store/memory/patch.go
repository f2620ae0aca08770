package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

// setter assigns one patched column onto a row, failing on unknown columns or mistyped values.
type setter[V any] func(v *V, column string, value any) (bool, error)

func apply[V any](v *V, p store.Patch, set setter[V]) error {
	for _, f := range p.Fields() {
		ok, err := set(v, f.Column, f.Value)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", store.ErrUnknownField, f.Column)
		}
	}
	return nil
}

func assign[T any](dst *T, column string, value any) (bool, error) {
	t, ok := value.(T)
	if !ok {
		return false, fmt.Errorf("memory: column %s: unexpected value type %T", column, value)
	}
	*dst = t
	return true, nil
}

func setUser(u *models.User, column string, value any) (bool, error) {
	switch column {
	case "email":
		return assign(&u.Email, column, value)
	case "first_name":
		return assign(&u.FirstName, column, value)
	case "last_name":
		return assign(&u.LastName, column, value)
	case "bio":
		return assign(&u.Bio, column, value)
	case "location":
		return assign(&u.Location, column, value)
	case "is_active":
		return assign(&u.IsActive, column, value)
	case "role":
		var role string
		if ok, err := assign(&role, column, value); !ok {
			return ok, err
		}
		u.Role = models.Role(role)
		return true, nil
	}
	return false, nil
}

func setGarden(g *models.Garden, column string, value any) (bool, error) {
	switch column {
	case "name":
		return assign(&g.Name, column, value)
	case "description":
		return assign(&g.Description, column, value)
	case "location":
		return assign(&g.Location, column, value)
	case "region":
		return assign(&g.Region, column, value)
	case "max_members":
		return assign(&g.MaxMembers, column, value)
	}
	return false, nil
}

func setDiscussion(d *models.Discussion, column string, value any) (bool, error) {
	switch column {
	case "title":
		return assign(&d.Title, column, value)
	case "content":
		return assign(&d.Content, column, value)
	case "category":
		return assign(&d.Category, column, value)
	case "is_pinned":
		return assign(&d.IsPinned, column, value)
	}
	return false, nil
}

func setReply(r *models.DiscussionReply, column string, value any) (bool, error) {
	if column == "content" {
		return assign(&r.Content, column, value)
	}
	return false, nil
}

func setEvent(e *models.Event, column string, value any) (bool, error) {
	switch column {
	case "title":
		return assign(&e.Title, column, value)
	case "description":
		return assign(&e.Description, column, value)
	case "location":
		return assign(&e.Location, column, value)
	case "start_date":
		return assign(&e.StartDate, column, value)
	case "end_date":
		return assign(&e.EndDate, column, value)
	case "max_attendees":
		return assign(&e.MaxAttendees, column, value)
	case "is_public":
		return assign(&e.IsPublic, column, value)
	}
	return false, nil
}

func setPhoto(p *models.Photo, column string, value any) (bool, error) {
	switch column {
	case "title":
		return assign(&p.Title, column, value)
	case "description":
		return assign(&p.Description, column, value)
	case "is_public":
		return assign(&p.IsPublic, column, value)
	}
	return false, nil
}

func setResource(r *models.Resource, column string, value any) (bool, error) {
	switch column {
	case "title":
		return assign(&r.Title, column, value)
	case "content":
		return assign(&r.Content, column, value)
	case "category":
		return assign(&r.Category, column, value)
	case "is_published":
		return assign(&r.IsPublished, column, value)
	case "tags":
		return assign(&r.Tags, column, value)
	}
	return false, nil
}

func setGuide(g *models.Guide, column string, value any) (bool, error) {
	switch column {
	case "step_number":
		return assign(&g.StepNumber, column, value)
	case "title":
		return assign(&g.Title, column, value)
	case "content":
		return assign(&g.Content, column, value)
	}
	return false, nil
}

func setStat(s *models.Stat, column string, value any) (bool, error) {
	switch column {
	case "stat_type":
		return assign(&s.StatType, column, value)
	case "value":
		return assign(&s.Value, column, value)
	case "unit":
		return assign(&s.Unit, column, value)
	case "notes":
		return assign(&s.Notes, column, value)
	case "recorded_at":
		return assign(&s.RecordedAt, column, value)
	}
	return false, nil
}

// update loads id from m, applies p and stamps UpdatedAt via touch. active reports whether
// the row is visible to updates.
func update[V any](st *state, m map[uuid.UUID]V, id uuid.UUID, p store.Patch, set setter[V], active func(V) bool, touch func(*V, time.Time)) (*V, error) {
	v, ok := m[id]
	if !ok || (active != nil && !active(v)) {
		return nil, store.ErrNotFound
	}
	if err := apply(&v, p, set); err != nil {
		return nil, err
	}
	touch(&v, st.now())
	m[id] = v
	return &v, nil
}
