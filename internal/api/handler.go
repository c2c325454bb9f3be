package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-planner/internal/assistant"
	"recipe-planner/internal/auth"
	"recipe-planner/internal/clipper"
	"recipe-planner/internal/notify"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/provider"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/search"
	"recipe-planner/internal/storage"
)

// Handler carries the HTTP surface's dependencies.
type Handler struct {
	log *zap.Logger

	edamam      *provider.EdamamClient
	spoonacular *provider.SpoonacularClient
	mealdb      *provider.MealDBClient

	recipes *recipe.Store
	plans   *planner.Repository
	users   *auth.UserStore
	jwt     *auth.JWTManager
	session *auth.Session
	images  *storage.ImageStore

	textGen   assistant.TextGenerator // nil when no API key is configured
	scheduler *notify.Scheduler       // nil when reminders are not configured
	clip      *clipper.Clipper

	sections *sectionSet
	snapshot *searchSnapshot
}

// NewHandler creates the API handler.
func NewHandler(
	log *zap.Logger,
	edamam *provider.EdamamClient,
	spoonacular *provider.SpoonacularClient,
	mealdb *provider.MealDBClient,
	recipes *recipe.Store,
	plans *planner.Repository,
	users *auth.UserStore,
	jwtManager *auth.JWTManager,
	session *auth.Session,
	images *storage.ImageStore,
	textGen assistant.TextGenerator,
	scheduler *notify.Scheduler,
) *Handler {
	h := &Handler{
		log:         log,
		edamam:      edamam,
		spoonacular: spoonacular,
		mealdb:      mealdb,
		recipes:     recipes,
		plans:       plans,
		users:       users,
		jwt:         jwtManager,
		session:     session,
		images:      images,
		textGen:     textGen,
		scheduler:   scheduler,
	}
	if textGen != nil {
		h.clip = clipper.NewClipper(recipes, textGen)
	}
	h.sections = newSectionSet(log, h.sectionFetchers)
	h.snapshot = newSearchSnapshot(log, h.snapshotFetchers)

	// The "new" section and the search pool both contain the locally
	// authored recipes, which change with the signed-in author; drop them
	// on every session change so the next request refetches.
	session.Subscribe(func(string) {
		h.sections.invalidate("new")
		h.snapshot.invalidate()
	})
	return h
}

// --- auth ---

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName, req.CountryCode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.jwt.GenerateToken(u)
	if err != nil {
		h.log.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.session.SignIn(u.ID)
	c.JSON(http.StatusCreated, gin.H{"user": u, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	token, err := h.jwt.GenerateToken(u)
	if err != nil {
		h.log.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.session.SignIn(u.ID)
	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}

func (h *Handler) Logout(c *gin.Context) {
	if id := h.session.UserID(); id != "" {
		h.log.Info("user signed out", zap.String("user_id", id))
	}
	h.session.SignOut()
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.log.Error("failed to load user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// --- sections ---

func (h *Handler) ListSections(c *gin.Context) {
	summaries, err := h.sections.summaries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": summaries})
}

func (h *Handler) GetSection(c *gin.Context) {
	summary, err := h.sections.summary(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AdvanceSection reveals the next chunk of a section. Both the
// scrolled-to-end signal and the explicit "show more" action route here; a
// finished section makes this a no-op.
func (h *Handler) AdvanceSection(c *gin.Context) {
	summary, err := h.sections.advance(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- search ---

func (h *Handler) Search(c *gin.Context) {
	items, err := h.snapshot.get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	facet := facetFromParams(c.Query("facet"))
	results := search.Filter(items, c.Query("q"), facet)
	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}

func facetFromParams(name string) search.Facet {
	switch name {
	case "", "all":
		return search.All()
	case "30min":
		return search.MaxDuration(30)
	case "1h":
		return search.DurationBetween(30, 60)
	default:
		return search.Category(name)
	}
}

// --- local recipes ---

type recipeRequest struct {
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	ImageURL        string        `json:"image_url"`
	IngredientLines []string      `json:"ingredient_lines"`
	Calories        *float64      `json:"calories"`
	Yield           *int          `json:"yield"`
	DietLabels      []string      `json:"diet_labels"`
	HealthLabels    []string      `json:"health_labels"`
	TotalTime       int           `json:"total_time"`
	Category        string        `json:"category"`
	Country         string        `json:"country"`
	Steps           []recipe.Step `json:"steps"`
}

func (h *Handler) CreateRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := recipe.LocalRecipe{
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		IngredientLines: req.IngredientLines,
		Calories:        req.Calories,
		Yield:           req.Yield,
		DietLabels:      req.DietLabels,
		HealthLabels:    req.HealthLabels,
		TotalTime:       req.TotalTime,
		Category:        req.Category,
		Country:         req.Country,
		CreatedBy:       currentUserID(c),
	}

	saved, err := h.recipes.Insert(c.Request.Context(), rec, req.Steps)
	if err != nil {
		if errors.Is(err, recipe.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("failed to save recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save recipe"})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) ListRecipes(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	recipes, err := h.recipes.ListNewest(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *Handler) GetRecipe(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error("failed to get recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get recipe"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	steps, err := h.recipes.Steps(c.Request.Context(), id)
	if err != nil {
		h.log.Error("failed to list steps", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list steps"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": rec, "steps": steps})
}

// ExternalRecipeDetail recovers provider-specific detail fields for a
// remote recipe.
func (h *Handler) ExternalRecipeDetail(c *gin.Context) {
	source := c.Param("source")
	id := c.Param("id")

	switch provider.Tag(source) {
	case provider.TagSpoonacular:
		raw, err := h.spoonacular.RecipeDetail(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipe": recipe.Normalize(provider.TagSpoonacular, raw)})
	case provider.TagMealDB:
		raw, err := h.mealdb.MealDetail(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if raw == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipe": recipe.Normalize(provider.TagMealDB, raw)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown source %q", source)})
	}
}

// --- meal plans ---

type planRequest struct {
	Recipe   recipe.Recipe `json:"recipe"`
	Date     string        `json:"date"`
	MealType planner.Slot  `json:"meal_type"`
	Portions int           `json:"portions"`
	Notes    string        `json:"notes"`
}

func (h *Handler) CreatePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := planner.BuildRecord(req.Recipe, currentUserID(c), req.Date, req.MealType, req.Portions, req.Notes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.plans.Insert(c.Request.Context(), rec)
	if err != nil {
		h.log.Error("failed to save plan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save plan"})
		return
	}

	if h.scheduler != nil {
		h.scheduler.ScheduleIn("Meal planned!",
			fmt.Sprintf("You planned %s (%d portion%s) for %s",
				saved.RecipeTitle, saved.Portions, plural(saved.Portions), saved.MealDate),
			time.Second)

		if day, err := time.Parse(planner.DateLayout, saved.MealDate); err == nil {
			reminderAt := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local)
			h.scheduler.ScheduleAt("Meal reminder",
				fmt.Sprintf("Time to prepare your recipe: %s (%d portion%s)",
					saved.RecipeTitle, saved.Portions, plural(saved.Portions)),
				reminderAt)
		}
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.plans.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.log.Error("failed to list plans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type rescheduleRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *Handler) ReschedulePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.plans.Reschedule(c.Request.Context(), id, currentUserID(c), req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeletePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}
	if err := h.plans.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- images ---

func (h *Handler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}

	name := uuid.NewString() + filepath.Ext(header.Filename)
	url, err := h.images.Save(data, "recipes", name)
	if err != nil {
		h.log.Error("failed to store image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// --- assistant ---

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) AssistantChat(c *gin.Context) {
	if h.textGen == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant is not configured"})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := assistant.Chat(c.Request.Context(), h.textGen, req.Message)
	if err != nil {
		h.log.Error("assistant request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant request failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// --- clipper ---

type clipRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) ClipRecipe(c *gin.Context) {
	if h.clip == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "clipper is not configured"})
		return
	}
	var req clipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.clip.ClipURL(c.Request.Context(), req.URL, currentUserID(c))
	if err != nil {
		h.log.Error("failed to clip recipe", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
