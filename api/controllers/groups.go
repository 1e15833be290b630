package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/api/validators"
	"github.com/angelmondragon/pantryshare-backend/internal/groups"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/types"
)

type groupListFunc func(ctx context.Context, uid string, limit int, cursor string) (*types.Page[groups.GroupSummary], error)

func groupListing(list groupListFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		limit, err := pageLimit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := list(r.Context(), uid, limit, validators.QueryString(r, "cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GroupsMine lists groups the caller has joined.
func GroupsMine(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "groups")
	}
	return groupListing(svc.GetUsersGroups, logg)
}

func GroupsCreated(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "groups")
	}
	return groupListing(svc.GetGroupsICreated, logg)
}

func GroupInvites(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "groups")
	}
	return groupListing(svc.GetGroupInvites, logg)
}

func GroupCreate(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "groups")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var payload groups.CreateGroupInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.CreateGroup(r.Context(), uid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

func GroupAddMember(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "groups")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var payload groups.AddMemberInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		group, err := svc.AddMemberToGroup(r.Context(), uid, groupID, payload.MemberEmail)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

func GroupMembers(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "groups")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		members, err := svc.GetGroupMembers(r.Context(), uid, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

func GroupAccept(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "groups")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		group, err := svc.AcceptGroupInvite(r.Context(), uid, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

func GroupDecline(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "groups")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		if err := svc.DeclineGroupInvite(r.Context(), uid, groupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"groupId": groupID, "declined": true})
	}
}

func GroupLeave(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "groups")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		result, err := svc.LeaveGroup(r.Context(), uid, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
