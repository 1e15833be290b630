package groups

import (
	"time"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

// Group is the groups/{groupId} document. GroupMembers always contains the
// creator and never overlaps PendingGroupMembers.
type Group struct {
	GroupID             string    `json:"groupId"`
	GroupName           string    `json:"groupName"`
	GroupMembers        []string  `json:"groupMembers"`
	PendingGroupMembers []string  `json:"pendingGroupMembers"`
	CreatedBy           string    `json:"createdBy"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Membership mirrors a user's place in a group under users/{uid}/groups.
type Membership struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	CreatedBy string `json:"createdBy"`
	Pending   bool   `json:"pending"`
}

// GroupSummary is one row of a group listing.
type GroupSummary struct {
	GroupID        string `json:"groupId"`
	GroupName      string `json:"groupName"`
	CreatedBy      string `json:"createdBy"`
	CreatedByEmail string `json:"createdByEmail"`
	Pending        bool   `json:"pending"`
}

// Member is one person in a group, with invitees flagged as pending.
type Member struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Pending   bool   `json:"pending"`
	IsCreator bool   `json:"isCreator"`
}

type CreateGroupInput struct {
	GroupName string `json:"groupName" validate:"required,max=100"`
}

type AddMemberInput struct {
	MemberEmail string `json:"memberEmail" validate:"required,email"`
}

// LeaveResult reports whether leaving removed the whole group.
type LeaveResult struct {
	GroupID      string `json:"groupId"`
	GroupDeleted bool   `json:"groupDeleted"`
	Message      string `json:"message"`
}

func groupToFields(g Group) docstore.Fields {
	return docstore.Fields{
		"groupId":             g.GroupID,
		"groupName":           g.GroupName,
		"groupMembers":        docstore.StringSet(g.GroupMembers),
		"pendingGroupMembers": docstore.StringSet(g.PendingGroupMembers),
		"createdBy":           g.CreatedBy,
		"createdAt":           g.CreatedAt.UTC(),
	}
}

func groupFromFields(id string, f docstore.Fields) Group {
	g := Group{
		GroupID:             id,
		GroupName:           f.String("groupName"),
		GroupMembers:        nonNil(f.Strings("groupMembers")),
		PendingGroupMembers: nonNil(f.Strings("pendingGroupMembers")),
		CreatedBy:           f.String("createdBy"),
	}
	if t, ok := f.Time("createdAt"); ok {
		g.CreatedAt = t
	}
	return g
}

func membershipToFields(m Membership) docstore.Fields {
	return docstore.Fields{
		"groupId":   m.GroupID,
		"groupName": m.GroupName,
		"createdBy": m.CreatedBy,
		"pending":   m.Pending,
	}
}

func membershipFromFields(id string, f docstore.Fields) Membership {
	return Membership{
		GroupID:   id,
		GroupName: f.String("groupName"),
		CreatedBy: f.String("createdBy"),
		Pending:   f.Bool("pending"),
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
