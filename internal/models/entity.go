package models

// Entity names a kind of row that the authorization and lifecycle tables key on.
type Entity string

const (
	EntityUser       Entity = "user"
	EntityGarden     Entity = "garden"
	EntityMembership Entity = "membership"
	EntityDiscussion Entity = "discussion"
	EntityReply      Entity = "reply"
	EntityEvent      Entity = "event"
	EntityAttendee   Entity = "event_attendee"
	EntityPhoto      Entity = "photo"
	EntityResource   Entity = "resource"
	EntityGuide      Entity = "guide"
	EntityStat       Entity = "stat"
)
