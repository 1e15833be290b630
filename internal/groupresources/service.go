// Package groupresources serves the resources a group shares: each member's
// pantry, a common recipe collection and searches over the combined pantry.
// Every call is limited to full members of the group.
package groupresources

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pantryshare-backend/internal/groups"
	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/internal/search"
	"github.com/angelmondragon/pantryshare-backend/internal/users"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
	"github.com/angelmondragon/pantryshare-backend/pkg/types"
)

const defaultFanout = 8

// authorizer loads a group and rejects callers that are not full members.
type authorizer interface {
	Authorize(ctx context.Context, uid, groupID string) (*groups.Group, error)
}

type pantrySource interface {
	ListAllPantry(ctx context.Context, uid string) ([]ingredients.PantryEntry, error)
}

type searcher interface {
	SearchMostMatchingFor(ctx context.Context, names []string, page, limit int) (*search.Results, error)
}

type ServiceParams struct {
	Groups  authorizer
	Recipes *Repository
	Pantry  pantrySource
	Users   users.Directory
	Search  searcher
	Fanout  int
	Clock   func() time.Time
}

type Service interface {
	GetPantryForGroup(ctx context.Context, uid, groupID string) ([]MemberPantry, error)
	GetRecipesForGroup(ctx context.Context, uid, groupID string, limit int, cursor string) (*types.Page[GroupRecipe], error)
	AddRecipeToGroup(ctx context.Context, uid, groupID string, recipe recipes.Recipe) (*GroupRecipe, error)
	RemoveRecipeFromGroup(ctx context.Context, uid, groupID string, recipeID recipes.ID) error
	SearchRecipesByMaxMatchingForGroup(ctx context.Context, uid, groupID string, page, limit int) (*search.Results, error)
}

type service struct {
	groups  authorizer
	recipes *Repository
	pantry  pantrySource
	users   users.Directory
	search  searcher
	fanout  int
	clock   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Groups == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group authorizer is required")
	}
	if params.Recipes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group recipes repo is required")
	}
	if params.Pantry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pantry source is required")
	}
	if params.Search == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search service is required")
	}
	fanout := params.Fanout
	if fanout <= 0 {
		fanout = defaultFanout
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		groups:  params.Groups,
		recipes: params.Recipes,
		pantry:  params.Pantry,
		users:   params.Users,
		search:  params.Search,
		fanout:  fanout,
		clock:   clock,
	}, nil
}

// GetPantryForGroup reads every member's pantry concurrently. The result
// follows the group's member order.
func (s *service) GetPantryForGroup(ctx context.Context, uid, groupID string) ([]MemberPantry, error) {
	g, err := s.groups.Authorize(ctx, uid, groupID)
	if err != nil {
		return nil, err
	}
	return s.memberPantries(ctx, g.GroupMembers, true)
}

func (s *service) memberPantries(ctx context.Context, members []string, withEmail bool) ([]MemberPantry, error) {
	out := make([]MemberPantry, len(members))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.fanout)
	for i, member := range members {
		eg.Go(func() error {
			entries, err := s.pantry.ListAllPantry(egCtx, member)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list member pantry")
			}
			if entries == nil {
				entries = []ingredients.PantryEntry{}
			}
			out[i] = MemberPantry{UID: member, Pantry: entries}
			if withEmail && s.users != nil {
				email, err := s.users.EmailFor(egCtx, member)
				if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
					return err
				}
				out[i].Email = email
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) GetRecipesForGroup(ctx context.Context, uid, groupID string, limit int, cursor string) (*types.Page[GroupRecipe], error) {
	g, err := s.groups.Authorize(ctx, uid, groupID)
	if err != nil {
		return nil, err
	}
	after, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	items, err := s.recipes.List(ctx, g.GroupID, pagination.LimitWithBuffer(limit), after)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list group recipes")
	}
	items, hasMore := pagination.Trim(items, limit)

	page := &types.Page[GroupRecipe]{Items: items, Count: len(items), HasMore: hasMore}
	if len(items) > 0 {
		last := items[len(items)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{Key: last.Recipe.Title, ID: string(last.RecipeID)})
	}
	return page, nil
}

// AddRecipeToGroup upserts the recipe; re-adding keeps the original adder.
func (s *service) AddRecipeToGroup(ctx context.Context, uid, groupID string, recipe recipes.Recipe) (*GroupRecipe, error) {
	if err := recipe.ID.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipe id")
	}
	g, err := s.groups.Authorize(ctx, uid, groupID)
	if err != nil {
		return nil, err
	}

	gr := GroupRecipe{RecipeID: recipe.ID, Recipe: recipe, AddedBy: uid, AddedAt: s.clock().UTC()}
	existing, err := s.recipes.Get(ctx, g.GroupID, recipe.ID)
	switch {
	case err == nil:
		gr.AddedBy = existing.AddedBy
		gr.AddedAt = existing.AddedAt
	case !errors.Is(err, docstore.ErrNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load group recipe")
	}
	if err := s.recipes.Save(ctx, g.GroupID, gr); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save group recipe")
	}
	return &gr, nil
}

func (s *service) RemoveRecipeFromGroup(ctx context.Context, uid, groupID string, recipeID recipes.ID) error {
	if err := recipeID.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipe id")
	}
	g, err := s.groups.Authorize(ctx, uid, groupID)
	if err != nil {
		return err
	}
	if _, err := s.recipes.Get(ctx, g.GroupID, recipeID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "recipe is not in this group")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load group recipe")
	}
	if err := s.recipes.Delete(ctx, g.GroupID, recipeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete group recipe")
	}
	return nil
}

// SearchRecipesByMaxMatchingForGroup ranks recipes by the members' combined
// pantry. An ingredient held by several members appears several times.
func (s *service) SearchRecipesByMaxMatchingForGroup(ctx context.Context, uid, groupID string, page, limit int) (*search.Results, error) {
	g, err := s.groups.Authorize(ctx, uid, groupID)
	if err != nil {
		return nil, err
	}
	pantries, err := s.memberPantries(ctx, g.GroupMembers, false)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range pantries {
		for _, e := range p.Pantry {
			names = append(names, e.IngredientName)
		}
	}
	return s.search.SearchMostMatchingFor(ctx, names, page, limit)
}
