package groups

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryshare-backend/internal/users"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore/memory"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
)

type fixture struct {
	store *memory.Store
	repo  *Repository
	svc   Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	dir, err := users.NewDirectory(users.NewRepository(store), clock)
	require.NoError(t, err)
	ctx := context.Background()
	for uid, email := range map[string]string{"A": "a@example.com", "B": "b@example.com", "C": "c@example.com"} {
		_, err := dir.EnsureUser(ctx, uid, email)
		require.NoError(t, err)
	}

	seq := 0
	repo := NewRepository(store)
	svc, err := NewService(ServiceParams{
		Groups: repo,
		Users:  dir,
		Clock:  clock,
		NewID: func() string {
			seq++
			return fmt.Sprintf("group-%02d", seq)
		},
	})
	require.NoError(t, err)
	return &fixture{store: store, repo: repo, svc: svc}
}

// assertMirrored checks member set disjointness and that every uid in either
// set has a record with the matching pending flag.
func (f *fixture) assertMirrored(t *testing.T, groupID string) {
	t.Helper()
	ctx := context.Background()
	g, err := f.repo.GetGroup(ctx, groupID)
	require.NoError(t, err)
	for _, uid := range g.GroupMembers {
		assert.NotContains(t, g.PendingGroupMembers, uid)
		rec, err := f.repo.GetMembership(ctx, uid, groupID)
		require.NoError(t, err, uid)
		assert.False(t, rec.Pending, uid)
	}
	for _, uid := range g.PendingGroupMembers {
		rec, err := f.repo.GetMembership(ctx, uid, groupID)
		require.NoError(t, err, uid)
		assert.True(t, rec.Pending, uid)
	}
}

func TestRoomiesInviteAndAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.CreateGroup(ctx, "A", CreateGroupInput{GroupName: " Roomies "})
	require.NoError(t, err)
	assert.Equal(t, "Roomies", g.GroupName)
	assert.Equal(t, []string{"A"}, g.GroupMembers)
	f.assertMirrored(t, g.GroupID)

	g, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "B@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, g.PendingGroupMembers)
	rec, err := f.repo.GetMembership(ctx, "B", g.GroupID)
	require.NoError(t, err)
	assert.True(t, rec.Pending)
	f.assertMirrored(t, g.GroupID)

	invites, err := f.svc.GetGroupInvites(ctx, "B", 10, "")
	require.NoError(t, err)
	require.Len(t, invites.Items, 1)
	assert.Equal(t, "a@example.com", invites.Items[0].CreatedByEmail)
	assert.True(t, invites.Items[0].Pending)

	g, err = f.svc.AcceptGroupInvite(ctx, "B", g.GroupID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, g.GroupMembers)
	assert.Empty(t, g.PendingGroupMembers)
	f.assertMirrored(t, g.GroupID)

	mine, err := f.svc.GetUsersGroups(ctx, "B", 10, "")
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.False(t, mine.Items[0].Pending)

	invites, err = f.svc.GetGroupInvites(ctx, "B", 10, "")
	require.NoError(t, err)
	assert.Empty(t, invites.Items)

	members, err := f.svc.GetGroupMembers(ctx, "B", g.GroupID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, Member{UID: "A", Email: "a@example.com", IsCreator: true}, members[0])
	assert.Equal(t, "b@example.com", members[1].Email)
}

func TestAddMemberErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGroup(ctx, "A", CreateGroupInput{GroupName: "Roomies"})
	require.NoError(t, err)
	_, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "b@example.com")
	require.NoError(t, err)

	_, err = f.svc.AddMemberToGroup(ctx, "A", "missing", "c@example.com")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	// pending invitees are not members yet
	_, err = f.svc.AddMemberToGroup(ctx, "B", g.GroupID, "c@example.com")
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	_, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "nobody@example.com")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "b@example.com")
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "a@example.com")
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = f.svc.CreateGroup(ctx, "A", CreateGroupInput{GroupName: "  "})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestDeclineRemovesInviteAndRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGroup(ctx, "A", CreateGroupInput{GroupName: "Roomies"})
	require.NoError(t, err)
	_, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "b@example.com")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeclineGroupInvite(ctx, "B", g.GroupID))
	stored, err := f.repo.GetGroup(ctx, g.GroupID)
	require.NoError(t, err)
	assert.Empty(t, stored.PendingGroupMembers)
	_, err = f.repo.GetMembership(ctx, "B", g.GroupID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	err = f.svc.DeclineGroupInvite(ctx, "B", g.GroupID)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = f.svc.AcceptGroupInvite(ctx, "B", g.GroupID)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = f.svc.AcceptGroupInvite(ctx, "B", "missing")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestCreatorLeaveCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGroup(ctx, "A", CreateGroupInput{GroupName: "Roomies"})
	require.NoError(t, err)
	_, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "b@example.com")
	require.NoError(t, err)
	_, err = f.svc.AcceptGroupInvite(ctx, "B", g.GroupID)
	require.NoError(t, err)
	_, err = f.svc.AddMemberToGroup(ctx, "B", g.GroupID, "c@example.com")
	require.NoError(t, err)

	res, err := f.svc.LeaveGroup(ctx, "A", g.GroupID)
	require.NoError(t, err)
	assert.True(t, res.GroupDeleted)

	_, err = f.repo.GetGroup(ctx, g.GroupID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	for _, uid := range []string{"A", "B", "C"} {
		_, err := f.repo.GetMembership(ctx, uid, g.GroupID)
		assert.ErrorIs(t, err, docstore.ErrNotFound, uid)
	}
}

func TestMemberLeaveKeepsGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGroup(ctx, "A", CreateGroupInput{GroupName: "Roomies"})
	require.NoError(t, err)
	_, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "b@example.com")
	require.NoError(t, err)
	_, err = f.svc.AcceptGroupInvite(ctx, "B", g.GroupID)
	require.NoError(t, err)

	res, err := f.svc.LeaveGroup(ctx, "B", g.GroupID)
	require.NoError(t, err)
	assert.False(t, res.GroupDeleted)
	assert.Equal(t, "left group", res.Message)
	f.assertMirrored(t, g.GroupID)
	_, err = f.repo.GetMembership(ctx, "B", g.GroupID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = f.svc.LeaveGroup(ctx, "B", g.GroupID)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = f.svc.GetGroupMembers(ctx, "B", g.GroupID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestListingsSortedAndPaginated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"Zeta", "Alpha", "Mid", "Beta"} {
		_, err := f.svc.CreateGroup(ctx, "A", CreateGroupInput{GroupName: name})
		require.NoError(t, err)
	}

	var names []string
	cursor := ""
	for calls := 0; ; calls++ {
		require.Less(t, calls, 4, "paging did not reach an empty page")
		page, err := f.svc.GetGroupsICreated(ctx, "A", 3, cursor)
		require.NoError(t, err)
		if len(page.Items) == 0 {
			break
		}
		require.NotEmpty(t, page.NextCursor)
		for _, item := range page.Items {
			names = append(names, item.GroupName)
			assert.Equal(t, "a@example.com", item.CreatedByEmail)
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, []string{"Alpha", "Beta", "Mid", "Zeta"}, names)

	_, err := f.svc.GetUsersGroups(ctx, "A", 3, "%%%")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestMirrorFailureReportsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGroup(ctx, "A", CreateGroupInput{GroupName: "Roomies"})
	require.NoError(t, err)

	f.store.SetFault(func(op, path string) error {
		if op == "set" && path == "users/B/groups/"+g.GroupID {
			return errors.New("boom")
		}
		return nil
	})
	_, err = f.svc.AddMemberToGroup(ctx, "A", g.GroupID, "b@example.com")
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.CodeOf(err))

	stored, err := f.repo.GetGroup(ctx, g.GroupID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, stored.PendingGroupMembers)
}
