package groups

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pantryshare-backend/internal/users"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
	"github.com/angelmondragon/pantryshare-backend/pkg/types"
)

const defaultFanout = 8

type ServiceParams struct {
	Groups *Repository
	Users  users.Directory
	Logger *logger.Logger
	Fanout int
	Clock  func() time.Time
	NewID  func() string
}

// Service runs the invite/accept/decline/leave workflow. Every mutation of a
// group's member sets goes through commit so the per-user membership records
// stay in step with the group document.
type Service interface {
	CreateGroup(ctx context.Context, uid string, input CreateGroupInput) (*Group, error)
	AddMemberToGroup(ctx context.Context, uid, groupID, memberEmail string) (*Group, error)
	GetGroupInvites(ctx context.Context, uid string, limit int, cursor string) (*types.Page[GroupSummary], error)
	GetGroupsICreated(ctx context.Context, uid string, limit int, cursor string) (*types.Page[GroupSummary], error)
	GetUsersGroups(ctx context.Context, uid string, limit int, cursor string) (*types.Page[GroupSummary], error)
	AcceptGroupInvite(ctx context.Context, uid, groupID string) (*Group, error)
	DeclineGroupInvite(ctx context.Context, uid, groupID string) error
	LeaveGroup(ctx context.Context, uid, groupID string) (*LeaveResult, error)
	GetGroupMembers(ctx context.Context, uid, groupID string) ([]Member, error)
	Authorize(ctx context.Context, uid, groupID string) (*Group, error)
}

type service struct {
	repo   *Repository
	users  users.Directory
	logg   *logger.Logger
	fanout int
	clock  func() time.Time
	newID  func() string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Groups == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "groups repo is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user directory is required")
	}
	fanout := params.Fanout
	if fanout <= 0 {
		fanout = defaultFanout
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := params.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &service{
		repo:   params.Groups,
		users:  params.Users,
		logg:   params.Logger,
		fanout: fanout,
		clock:  clock,
		newID:  newID,
	}, nil
}

// mirror is one membership record change that follows a group write.
type mirror struct {
	uid     string
	pending bool
	remove  bool
}

// commit writes (or deletes) the group document and then applies the
// mirrored membership record changes for exactly the affected uids. A failed
// group write aborts before any record is touched.
func (s *service) commit(ctx context.Context, g Group, deleteGroup bool, changes ...mirror) error {
	if deleteGroup {
		if err := s.repo.DeleteGroup(ctx, g.GroupID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete group")
		}
	} else {
		if err := s.repo.SaveGroup(ctx, g); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save group")
		}
	}

	var errs error
	for _, c := range changes {
		if c.remove {
			errs = multierr.Append(errs, s.repo.DeleteMembership(ctx, c.uid, g.GroupID))
			continue
		}
		errs = multierr.Append(errs, s.repo.SaveMembership(ctx, c.uid, Membership{
			GroupID:   g.GroupID,
			GroupName: g.GroupName,
			CreatedBy: g.CreatedBy,
			Pending:   c.pending,
		}))
	}
	if errs != nil {
		if s.logg != nil {
			ctx = s.logg.WithGroupID(ctx, g.GroupID)
			s.logg.Error(ctx, "group.membership_mirror.failed", errs)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "group updated with incomplete membership records").
			WithDetails(map[string]any{"groupId": g.GroupID})
	}
	return nil
}

func (s *service) CreateGroup(ctx context.Context, uid string, input CreateGroupInput) (*Group, error) {
	name := strings.TrimSpace(input.GroupName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "groupName is required")
	}
	g := Group{
		GroupID:             s.newID(),
		GroupName:           name,
		GroupMembers:        []string{uid},
		PendingGroupMembers: []string{},
		CreatedBy:           uid,
		CreatedAt:           s.clock().UTC(),
	}
	if err := s.commit(ctx, g, false, mirror{uid: uid}); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithGroupID(ctx, g.GroupID), "group.created")
	}
	return &g, nil
}

func (s *service) AddMemberToGroup(ctx context.Context, uid, groupID, memberEmail string) (*Group, error) {
	email := users.NormalizeEmail(memberEmail)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "memberEmail is required")
	}
	g, err := s.Authorize(ctx, uid, groupID)
	if err != nil {
		return nil, err
	}
	target, err := s.users.ResolveEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if slices.Contains(g.GroupMembers, target) || slices.Contains(g.PendingGroupMembers, target) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a member or has a pending invite")
	}

	g.PendingGroupMembers = append(g.PendingGroupMembers, target)
	if err := s.commit(ctx, *g, false, mirror{uid: target, pending: true}); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *service) AcceptGroupInvite(ctx context.Context, uid, groupID string) (*Group, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(g.PendingGroupMembers, uid) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no pending invite for this group")
	}
	g.PendingGroupMembers = without(g.PendingGroupMembers, uid)
	if !slices.Contains(g.GroupMembers, uid) {
		g.GroupMembers = append(g.GroupMembers, uid)
	}
	if err := s.commit(ctx, *g, false, mirror{uid: uid}); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *service) DeclineGroupInvite(ctx context.Context, uid, groupID string) error {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !slices.Contains(g.PendingGroupMembers, uid) {
		return pkgerrors.New(pkgerrors.CodeValidation, "no pending invite for this group")
	}
	g.PendingGroupMembers = without(g.PendingGroupMembers, uid)
	return s.commit(ctx, *g, false, mirror{uid: uid, remove: true})
}

func (s *service) LeaveGroup(ctx context.Context, uid, groupID string) (*LeaveResult, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(g.GroupMembers, uid) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "not a member of this group")
	}
	g.GroupMembers = without(g.GroupMembers, uid)
	changes := []mirror{{uid: uid, remove: true}}

	if g.CreatedBy == uid {
		for _, member := range g.GroupMembers {
			changes = append(changes, mirror{uid: member, remove: true})
		}
		for _, pending := range g.PendingGroupMembers {
			changes = append(changes, mirror{uid: pending, remove: true})
		}
		if err := s.commit(ctx, *g, true, changes...); err != nil {
			return nil, err
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithGroupID(ctx, groupID), "group.deleted_by_creator")
		}
		return &LeaveResult{GroupID: groupID, GroupDeleted: true, Message: "group deleted"}, nil
	}

	empty := len(g.GroupMembers) == 0 && len(g.PendingGroupMembers) == 0
	if err := s.commit(ctx, *g, empty, changes...); err != nil {
		return nil, err
	}
	if empty {
		return &LeaveResult{GroupID: groupID, GroupDeleted: true, Message: "group deleted"}, nil
	}
	return &LeaveResult{GroupID: groupID, Message: "left group"}, nil
}

func (s *service) GetGroupMembers(ctx context.Context, uid, groupID string) ([]Member, error) {
	g, err := s.Authorize(ctx, uid, groupID)
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(g.GroupMembers)+len(g.PendingGroupMembers))
	for _, m := range g.GroupMembers {
		members = append(members, Member{UID: m, IsCreator: m == g.CreatedBy})
	}
	for _, m := range g.PendingGroupMembers {
		members = append(members, Member{UID: m, Pending: true})
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.fanout)
	for i := range members {
		eg.Go(func() error {
			email, err := s.emailFor(egCtx, members[i].UID)
			if err != nil {
				return err
			}
			members[i].Email = email
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return members, nil
}

// Authorize loads the group and checks that uid is a full member.
func (s *service) Authorize(ctx context.Context, uid, groupID string) (*Group, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(g.GroupMembers, uid) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this group")
	}
	return g, nil
}

func (s *service) GetGroupInvites(ctx context.Context, uid string, limit int, cursor string) (*types.Page[GroupSummary], error) {
	return s.listMemberships(ctx, uid, true, limit, cursor)
}

func (s *service) GetUsersGroups(ctx context.Context, uid string, limit int, cursor string) (*types.Page[GroupSummary], error) {
	return s.listMemberships(ctx, uid, false, limit, cursor)
}

func (s *service) GetGroupsICreated(ctx context.Context, uid string, limit int, cursor string) (*types.Page[GroupSummary], error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}
	groups, err := s.repo.ListCreatedBy(ctx, uid, pagination.LimitWithBuffer(limit), after)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list created groups")
	}
	groups, hasMore := pagination.Trim(groups, limit)

	items := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		items = append(items, GroupSummary{GroupID: g.GroupID, GroupName: g.GroupName, CreatedBy: g.CreatedBy})
	}
	return s.summaryPage(ctx, items, hasMore)
}

func (s *service) listMemberships(ctx context.Context, uid string, pending bool, limit int, cursor string) (*types.Page[GroupSummary], error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListMemberships(ctx, uid, pending, pagination.LimitWithBuffer(limit), after)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list memberships")
	}
	records, hasMore := pagination.Trim(records, limit)

	items := make([]GroupSummary, 0, len(records))
	for _, m := range records {
		items = append(items, GroupSummary{
			GroupID:   m.GroupID,
			GroupName: m.GroupName,
			CreatedBy: m.CreatedBy,
			Pending:   m.Pending,
		})
	}
	return s.summaryPage(ctx, items, hasMore)
}

// summaryPage resolves creator emails and builds the page. The cursor comes
// from the store order so the re-sort below cannot skip rows.
func (s *service) summaryPage(ctx context.Context, items []GroupSummary, hasMore bool) (*types.Page[GroupSummary], error) {
	page := &types.Page[GroupSummary]{Count: len(items), HasMore: hasMore}
	if len(items) > 0 {
		last := items[len(items)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{Key: last.GroupName, ID: last.GroupID})
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.fanout)
	for i := range items {
		eg.Go(func() error {
			email, err := s.emailFor(egCtx, items[i].CreatedBy)
			if err != nil {
				return err
			}
			items[i].CreatedByEmail = email
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(items, func(a, b GroupSummary) int {
		if c := strings.Compare(a.GroupName, b.GroupName); c != 0 {
			return c
		}
		return strings.Compare(a.GroupID, b.GroupID)
	})
	page.Items = items
	return page, nil
}

// emailFor returns "" for users without a profile.
func (s *service) emailFor(ctx context.Context, uid string) (string, error) {
	email, err := s.users.EmailFor(ctx, uid)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return "", nil
		}
		return "", err
	}
	return email, nil
}

func (s *service) loadGroup(ctx context.Context, groupID string) (*Group, error) {
	groupID = strings.TrimSpace(groupID)
	if err := docstore.ValidateID(groupID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid group id")
	}
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load group")
	}
	return g, nil
}

func parseCursor(cursor string) (*pagination.Cursor, error) {
	after, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return after, nil
}

func without(list []string, uid string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != uid {
			out = append(out, v)
		}
	}
	return out
}
