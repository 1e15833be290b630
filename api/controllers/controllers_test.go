package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryshare-backend/api/middleware"
	"github.com/angelmondragon/pantryshare-backend/internal/favorites"
	"github.com/angelmondragon/pantryshare-backend/internal/groupresources"
	"github.com/angelmondragon/pantryshare-backend/internal/ledger"
	"github.com/angelmondragon/pantryshare-backend/internal/mealplans"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
	"github.com/angelmondragon/pantryshare-backend/internal/search"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

// newRequest seeds the auth context and chi route params the way the router would.
func newRequest(method, target, body, uid string, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := req.Context()
	if uid != "" {
		ctx = middleware.WithUserID(ctx, uid)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

type stubLedger struct {
	ledger.Service
	removeShopping func(ctx context.Context, uid, name string, move bool) (*ledger.RemoveShoppingListResult, error)
}

func (s stubLedger) RemoveFromShoppingList(ctx context.Context, uid, name string, move bool) (*ledger.RemoveShoppingListResult, error) {
	return s.removeShopping(ctx, uid, name, move)
}

func TestPantryListRejectsOutOfRangeLimit(t *testing.T) {
	handler := PantryList(stubLedger{}, testLogger())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, newRequest(http.MethodGet, "/pantry?limit=500", "", "uid-1", nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decode(t, resp).Code)
}

func TestHandlersRequireUser(t *testing.T) {
	handler := PantryList(stubLedger{}, testLogger())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, newRequest(http.MethodGet, "/pantry", "", "", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestShoppingListRemovePassesMoveFlag(t *testing.T) {
	var gotName string
	var gotMove bool
	svc := stubLedger{removeShopping: func(_ context.Context, uid, name string, move bool) (*ledger.RemoveShoppingListResult, error) {
		gotName, gotMove = name, move
		return &ledger.RemoveShoppingListResult{Moved: move}, nil
	}}

	resp := httptest.NewRecorder()
	ShoppingListRemove(svc, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodDelete, "/shopping-list/Milk?move=true", "", "uid-1", map[string]string{"ingredientName": "Milk"}))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Milk", gotName)
	assert.True(t, gotMove)
	assert.JSONEq(t, `{"moved":true}`, string(decode(t, resp).Data))
}

func TestShoppingListRemoveRejectsBadMove(t *testing.T) {
	resp := httptest.NewRecorder()
	ShoppingListRemove(stubLedger{}, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodDelete, "/shopping-list/Milk?move=maybe", "", "uid-1", map[string]string{"ingredientName": "Milk"}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

type stubMealPlans struct {
	mealplans.Service
	add func(ctx context.Context, uid string, input mealplans.AddInput) (*mealplans.MealPlan, error)
	get func(ctx context.Context, uid, mealID string) (*mealplans.ResolvedMealPlan, error)
}

func (s stubMealPlans) AddRecipeToMealPlan(ctx context.Context, uid string, input mealplans.AddInput) (*mealplans.MealPlan, error) {
	return s.add(ctx, uid, input)
}

func (s stubMealPlans) GetMealByID(ctx context.Context, uid, mealID string) (*mealplans.ResolvedMealPlan, error) {
	return s.get(ctx, uid, mealID)
}

func TestMealPlanAddReturnsCreated(t *testing.T) {
	var got mealplans.AddInput
	svc := stubMealPlans{add: func(_ context.Context, uid string, input mealplans.AddInput) (*mealplans.MealPlan, error) {
		got = input
		return &mealplans.MealPlan{MealID: "meal-1", RecipeID: input.Recipe.ID, Date: input.Date}, nil
	}}
	body := `{"recipe":{"id":"716429","title":"Pasta"},"ingredients":[{"name":"Milk","inPantry":true}],"date":"2026-03-02"}`

	resp := httptest.NewRecorder()
	MealPlanAdd(svc, testLogger()).ServeHTTP(resp, newRequest(http.MethodPost, "/recipes/meal-plan", body, "uid-1", nil))

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, recipes.ID("716429"), got.Recipe.ID)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "Milk", got.Ingredients[0].Name)
}

func TestMealPlanAddRequiresDate(t *testing.T) {
	svc := stubMealPlans{add: func(context.Context, string, mealplans.AddInput) (*mealplans.MealPlan, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	resp := httptest.NewRecorder()
	MealPlanAdd(svc, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodPost, "/recipes/meal-plan", `{"recipe":{"id":"1"},"ingredients":[]}`, "uid-1", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMealPlanGetMapsNotFound(t *testing.T) {
	svc := stubMealPlans{get: func(context.Context, string, string) (*mealplans.ResolvedMealPlan, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "meal plan not found")
	}}
	resp := httptest.NewRecorder()
	MealPlanGet(svc, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodGet, "/recipes/meal-plan/nope", "", "uid-1", map[string]string{"mealId": "nope"}))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decode(t, resp)
	assert.Equal(t, "meal plan not found", env.Error)
	assert.Equal(t, string(pkgerrors.CodeNotFound), env.Code)
}

type stubSearch struct {
	search.Service
	keyword func(ctx context.Context, query string, page, limit int) (*search.Results, error)
}

func (s stubSearch) SearchByKeyword(ctx context.Context, query string, page, limit int) (*search.Results, error) {
	return s.keyword(ctx, query, page, limit)
}

func TestRecipeSearchKeywordDefaultsPaging(t *testing.T) {
	var gotQuery string
	var gotPage, gotLimit int
	svc := stubSearch{keyword: func(_ context.Context, query string, page, limit int) (*search.Results, error) {
		gotQuery, gotPage, gotLimit = query, page, limit
		return &search.Results{Recipes: []recipes.Recipe{}, Page: page, Limit: limit}, nil
	}}

	resp := httptest.NewRecorder()
	RecipeSearchKeyword(svc, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodGet, "/recipes/search-keyword?query=%20pasta%20", "", "uid-1", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "pasta", gotQuery)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, defaultSearchLimit, gotLimit)
}

func TestRecipeSearchRejectsZeroPage(t *testing.T) {
	resp := httptest.NewRecorder()
	RecipeSearchKeyword(stubSearch{}, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodGet, "/recipes/search-keyword?query=pasta&page=0", "", "uid-1", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

type stubFavorites struct {
	favorites.Service
	remove func(ctx context.Context, uid string, recipeID recipes.ID) error
}

func (s stubFavorites) Remove(ctx context.Context, uid string, recipeID recipes.ID) error {
	return s.remove(ctx, uid, recipeID)
}

func TestFavoriteRemoveUsesPathRecipe(t *testing.T) {
	var got recipes.ID
	svc := stubFavorites{remove: func(_ context.Context, _ string, recipeID recipes.ID) error {
		got = recipeID
		return nil
	}}
	resp := httptest.NewRecorder()
	FavoriteRemove(svc, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodDelete, "/recipes/favorites/42", "", "uid-1", map[string]string{"recipeId": "42"}))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, recipes.ID("42"), got)
}

type stubGroupResources struct {
	groupresources.Service
	add func(ctx context.Context, uid, groupID string, recipe recipes.Recipe) (*groupresources.GroupRecipe, error)
}

func (s stubGroupResources) AddRecipeToGroup(ctx context.Context, uid, groupID string, recipe recipes.Recipe) (*groupresources.GroupRecipe, error) {
	return s.add(ctx, uid, groupID, recipe)
}

func TestGroupRecipeAddForbiddenForNonMember(t *testing.T) {
	svc := stubGroupResources{add: func(context.Context, string, string, recipes.Recipe) (*groupresources.GroupRecipe, error) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this group")
	}}
	resp := httptest.NewRecorder()
	GroupRecipeAdd(svc, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodPost, "/groups/g1/recipes", `{"recipe":{"id":"7","title":"Soup"}}`, "uid-1", map[string]string{"groupId": "g1"}))

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

type stubReminders struct {
	create func(ctx context.Context, input reminders.CreateTaskInput) (*reminders.TaskDTO, error)
}

func (s stubReminders) CreateTask(ctx context.Context, input reminders.CreateTaskInput) (*reminders.TaskDTO, error) {
	return s.create(ctx, input)
}

func TestReminderTaskCreateSurfacesUpstreamFailure(t *testing.T) {
	svc := stubReminders{create: func(context.Context, reminders.CreateTaskInput) (*reminders.TaskDTO, error) {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "task provider rejected request")
	}}
	resp := httptest.NewRecorder()
	ReminderTaskCreate(svc, testLogger()).ServeHTTP(resp,
		newRequest(http.MethodPost, "/reminders/tasks", `{"title":"Buy milk"}`, "uid-1", nil))

	assert.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestNilServiceAnswersInternal(t *testing.T) {
	resp := httptest.NewRecorder()
	FavoritesList(nil, testLogger()).ServeHTTP(resp, newRequest(http.MethodGet, "/recipes/favorites", "", "uid-1", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
