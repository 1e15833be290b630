package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pantryshare-backend/api/controllers"
	"github.com/angelmondragon/pantryshare-backend/api/middleware"
	"github.com/angelmondragon/pantryshare-backend/internal/favorites"
	"github.com/angelmondragon/pantryshare-backend/internal/groupresources"
	"github.com/angelmondragon/pantryshare-backend/internal/groups"
	"github.com/angelmondragon/pantryshare-backend/internal/ledger"
	"github.com/angelmondragon/pantryshare-backend/internal/mealplans"
	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
	"github.com/angelmondragon/pantryshare-backend/internal/search"
	"github.com/angelmondragon/pantryshare-backend/internal/users"
	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/pantryshare-backend/pkg/redis"
)

// Services carries everything the HTTP surface dispatches to. Nil services
// answer their routes with an internal error.
type Services struct {
	Users          users.Directory
	Ledger         ledger.Service
	Groups         groups.Service
	GroupResources groupresources.Service
	MealPlans      mealplans.Service
	Favorites      favorites.Service
	Search         search.Service
	Reminders      reminders.Service
}

// Infra carries shared backends. Idempotency and RateLimit must be untyped
// nil when redis is not configured.
type Infra struct {
	DocStore    controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	RateLimit   middleware.RateLimitStore
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, infra.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"docstore": infra.DocStore,
			"redis":    infra.Redis,
		}))
	})

	if infra.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	apiPolicy := middleware.NewRateLimitPolicy("api", cfg.RateLimit.Window, cfg.RateLimit.Limit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svc.Users, logg))
		r.Use(middleware.ReminderToken())
		r.Use(middleware.RateLimit(apiPolicy, infra.RateLimit, logg))
		r.Use(middleware.Idempotency(infra.Idempotency, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/pantry", func(r chi.Router) {
			r.Get("/", controllers.PantryList(svc.Ledger, logg))
			r.Post("/", controllers.PantryAdd(svc.Ledger, logg))
			r.Patch("/", controllers.PantryModify(svc.Ledger, logg))
			r.Delete("/{ingredientName}", controllers.PantryRemove(svc.Ledger, logg))
		})

		r.Route("/shopping-list", func(r chi.Router) {
			r.Get("/", controllers.ShoppingListList(svc.Ledger, logg))
			r.Post("/", controllers.ShoppingListAdd(svc.Ledger, logg))
			r.Patch("/", controllers.ShoppingListModify(svc.Ledger, logg))
			r.Delete("/{ingredientName}", controllers.ShoppingListRemove(svc.Ledger, logg))
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", controllers.GroupsMine(svc.Groups, logg))
			r.Post("/", controllers.GroupCreate(svc.Groups, logg))
			r.Get("/created", controllers.GroupsCreated(svc.Groups, logg))
			r.Get("/invites", controllers.GroupInvites(svc.Groups, logg))

			r.Route("/{groupId}", func(r chi.Router) {
				r.Delete("/", controllers.GroupLeave(svc.Groups, logg))
				r.Get("/members", controllers.GroupMembers(svc.Groups, logg))
				r.Post("/members", controllers.GroupAddMember(svc.Groups, logg))
				r.Post("/accept", controllers.GroupAccept(svc.Groups, logg))
				r.Post("/decline", controllers.GroupDecline(svc.Groups, logg))

				r.Get("/pantry", controllers.GroupPantry(svc.GroupResources, logg))
				r.Get("/recipes", controllers.GroupRecipesList(svc.GroupResources, logg))
				r.Post("/recipes", controllers.GroupRecipeAdd(svc.GroupResources, logg))
				r.Delete("/recipes/{recipeId}", controllers.GroupRecipeRemove(svc.GroupResources, logg))
				r.Get("/search-most-matching", controllers.GroupSearchMostMatching(svc.GroupResources, logg))
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Route("/meal-plan", func(r chi.Router) {
				r.Get("/", controllers.MealPlanList(svc.MealPlans, logg))
				r.Post("/", controllers.MealPlanAdd(svc.MealPlans, logg))
				r.Post("/reconcile", controllers.MealPlanReconcile(svc.MealPlans, logg))
				r.Get("/{mealId}", controllers.MealPlanGet(svc.MealPlans, logg))
				r.Delete("/{mealId}", controllers.MealPlanRemove(svc.MealPlans, logg))
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", controllers.FavoritesList(svc.Favorites, logg))
				r.Post("/", controllers.FavoriteAdd(svc.Favorites, logg))
				r.Get("/{recipeId}", controllers.FavoriteGet(svc.Favorites, logg))
				r.Delete("/{recipeId}", controllers.FavoriteRemove(svc.Favorites, logg))
			})

			r.Get("/search-keyword", controllers.RecipeSearchKeyword(svc.Search, logg))
			r.Get("/search-most-matching", controllers.RecipeSearchMostMatching(svc.Search, logg))
			r.Get("/search-least-missing", controllers.RecipeSearchLeastMissing(svc.Search, logg))
			r.Get("/{recipeId}", controllers.RecipeInformation(svc.Search, logg))
		})

		r.Post("/reminders/tasks", controllers.ReminderTaskCreate(svc.Reminders, logg))
	})

	return r
}
