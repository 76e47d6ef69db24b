package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"

	"github.com/akorhonen/restaurant-browser/internal/api"
	"github.com/akorhonen/restaurant-browser/internal/app"
	"github.com/akorhonen/restaurant-browser/internal/catalog"
	"github.com/akorhonen/restaurant-browser/internal/config"
	"github.com/akorhonen/restaurant-browser/internal/logging"
	"github.com/akorhonen/restaurant-browser/internal/menus"
	"github.com/akorhonen/restaurant-browser/internal/session"
)

// Options carries the HTTP-surface settings for the UI gateway.
type Options struct {
	AllowedOrigins []string
	RateLimit      config.RateLimitConfig
}

// Register sets up the UI gateway routes.
// HTTP concerns are handled here, while application logic is delegated to
// the app controller and the session manager.
func Register(controller *app.App, sessions *session.Manager, opts Options) func(r chi.Router) {
	return func(r chi.Router) {
		if len(opts.AllowedOrigins) > 0 {
			r.Use(cors.New(cors.Options{
				AllowedOrigins:   opts.AllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Content-Type"},
				AllowCredentials: true,
			}).Handler)
		}
		if opts.RateLimit.Requests > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit.Requests, opts.RateLimit.Window))
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", loginRoute(sessions))
				r.Post("/register", registerRoute(sessions))
				r.Post("/logout", logoutRoute(sessions))
			})
			r.Get("/session", sessionRoute(sessions))

			r.Route("/restaurants", func(r chi.Router) {
				r.Get("/", catalogRoute(controller))
				r.Post("/fetch", fetchCatalogRoute(controller))
			})
			r.Put("/filters", applyFilterRoute(controller))

			r.Route("/favourites", func(r chi.Router) {
				r.Get("/", listFavouritesRoute(sessions))
				r.Post("/{restaurantID}/toggle", toggleFavouriteRoute(controller))
			})

			r.Route("/selection", func(r chi.Router) {
				r.Post("/{restaurantID}", selectRestaurantRoute(controller))
				r.Put("/period", changePeriodRoute(controller))
			})
			r.Get("/menu", menuRoute(controller))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileRoute(sessions))
				r.Put("/", updateProfileRoute(sessions))
				r.Post("/avatar", uploadAvatarRoute(sessions))
			})

			r.Post("/location", locateRoute(controller))
		})
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func loginRoute(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Username == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		logging.Log(ctx).Layer("routes").Op("login").Str("username", req.Username).
			Info("received login request")

		user, err := sessions.Login(ctx, req.Username, req.Password)
		if err != nil {
			logging.Log(ctx).Layer("routes").Op("login").Err(err).Warn("login failed")
			respondWithAPIError(w, err)
			return
		}

		logging.Log(ctx).Layer("routes").Op("login").User(user.ID).
			Int("status_code", http.StatusOK).Info("login successful")
		respondWithJSON(w, http.StatusOK, user)
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerRoute(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "Username, email and password are required")
			return
		}

		logging.Log(ctx).Layer("routes").Op("register").Str("username", req.Username).
			Info("received register request")

		user, err := sessions.Register(ctx, req.Username, req.Email, req.Password)
		if err != nil {
			logging.Log(ctx).Layer("routes").Op("register").Err(err).Warn("registration failed")
			respondWithAPIError(w, err)
			return
		}

		logging.Log(ctx).Layer("routes").Op("register").User(user.ID).
			Int("status_code", http.StatusCreated).Info("registration successful")
		respondWithJSON(w, http.StatusCreated, user)
	}
}

func logoutRoute(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := sessions.Logout(); err != nil {
			logging.Log(ctx).Layer("routes").Op("logout").Err(err).Error("logout failed")
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		logging.Log(ctx).Layer("routes").Op("logout").Int("status_code", http.StatusOK).
			Info("session cleared")
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

func sessionRoute(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, err := sessions.Current(ctx)
		if err != nil {
			respondWithAPIError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}

func catalogRoute(controller *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, controller.CatalogView())
	}
}

func fetchCatalogRoute(controller *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logging.Log(ctx).Layer("routes").Op("fetchCatalog").Info("received catalog fetch request")

		view := controller.LoadCatalog(ctx)
		if view.Error != "" {
			logging.Log(ctx).Layer("routes").Op("fetchCatalog").Str("message", view.Error).
				Warn("catalog fetch failed")
		}
		respondWithJSON(w, http.StatusOK, view)
	}
}

func applyFilterRoute(controller *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var filter catalog.Filter
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		logging.Log(ctx).Layer("routes").Op("applyFilter").
			Str("city", filter.City).Str("company", filter.Company).
			Info("received filter request")

		respondWithJSON(w, http.StatusOK, controller.ApplyFilter(filter))
	}
}

func listFavouritesRoute(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		respondWithJSON(w, http.StatusOK, sessions.FavouriteRestaurants(ctx))
	}
}

// toggleFavouriteRoute never returns 401: without a session the toggle is
// a silent no-op and the unchanged list view is returned.
func toggleFavouriteRoute(controller *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		restaurantID := chi.URLParam(r, "restaurantID")

		logging.Log(ctx).Layer("routes").Op("toggleFavourite").Restaurant(restaurantID).
			Info("received toggle favourite request")

		respondWithJSON(w, http.StatusOK, controller.ToggleFavourite(ctx, restaurantID))
	}
}

func selectRestaurantRoute(controller *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		restaurantID := chi.URLParam(r, "restaurantID")

		logging.Log(ctx).Layer("routes").Op("selectRestaurant").Restaurant(restaurantID).
			Info("received selection request")

		view, err := controller.SelectRestaurant(ctx, restaurantID)
		if err != nil {
			var unknown *app.ErrUnknownRestaurant
			if errors.As(err, &unknown) {
				logging.Log(ctx).Layer("routes").Op("selectRestaurant").Restaurant(restaurantID).
					Warn("restaurant not in catalog")
				respondWithError(w, http.StatusNotFound, "Restaurant not found")
				return
			}
			logging.Log(ctx).Layer("routes").Op("selectRestaurant").Restaurant(restaurantID).
				Err(err).Error("selection failed")
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondWithJSON(w, http.StatusOK, view)
	}
}

type periodRequest struct {
	Period string `json:"period"`
}

func changePeriodRoute(controller *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req periodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		period, err := menus.ParsePeriod(req.Period)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		logging.Log(ctx).Layer("routes").Op("changePeriod").Period(string(period)).
			Info("received period change request")

		respondWithJSON(w, http.StatusOK, controller.ChangePeriod(ctx, period))
	}
}

func menuRoute(controller *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, controller.MenuView())
	}
}

func profileRoute(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, err := sessions.RefreshProfile(ctx)
		if err != nil {
			respondWithAPIError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}

func updateProfileRoute(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var update api.UserUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		logging.Log(ctx).Layer("routes").Op("updateProfile").Info("received profile update request")

		user, err := sessions.UpdateProfile(ctx, update)
		if err != nil {
			logging.Log(ctx).Layer("routes").Op("updateProfile").Err(err).Warn("profile update failed")
			respondWithAPIError(w, err)
			return
		}

		logging.Log(ctx).Layer("routes").Op("updateProfile").User(user.ID).
			Int("status_code", http.StatusOK).Info("profile updated")
		respondWithJSON(w, http.StatusOK, user)
	}
}

const maxAvatarBytes = 5 << 20

func uploadAvatarRoute(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid multipart body")
			return
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Avatar file is required")
			return
		}
		defer file.Close()

		logging.Log(ctx).Layer("routes").Op("uploadAvatar").Str("filename", header.Filename).
			Info("received avatar upload")

		user, err := sessions.UploadAvatar(ctx, header.Filename, file)
		if err != nil {
			logging.Log(ctx).Layer("routes").Op("uploadAvatar").Err(err).Warn("avatar upload failed")
			respondWithAPIError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, user)
	}
}

type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func locateRoute(controller *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req locationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		logging.Log(ctx).Layer("routes").Op("locate").Info("received locate request")

		respondWithJSON(w, http.StatusOK, controller.Locate(req.Latitude, req.Longitude))
	}
}

// respondWithAPIError maps application errors to HTTP statuses: remote
// API errors pass their status through, missing sessions become 401 and
// empty updates 400.
func respondWithAPIError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		respondWithError(w, apiErr.StatusCode, apiErr.Message)
	case errors.Is(err, session.ErrAuthRequired):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, session.ErrEmptyUpdate):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}
