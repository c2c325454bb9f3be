package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LocalRecipe is a recipe authored by a user and stored in the local
// database. The JSON tags match the shape the normalizer expects for
// provider.TagLocal records.
type LocalRecipe struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	ImageURL        string    `json:"image_url" db:"image_url"`
	IngredientLines []string  `json:"ingredient_lines"`
	Calories        *float64  `json:"calories,omitempty" db:"calories"`
	Yield           *int      `json:"yield,omitempty" db:"yield"`
	DietLabels      []string  `json:"diet_labels"`
	HealthLabels    []string  `json:"health_labels"`
	TotalTime       int       `json:"total_time,omitempty" db:"total_time"`
	Category        string    `json:"category" db:"category"`
	Country         string    `json:"country" db:"country"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Step is one instruction of a local recipe, ordered by StepNumber.
type Step struct {
	RecipeID    string `json:"recipe_id" db:"recipe_id"`
	StepNumber  int    `json:"step_number" db:"step_number"`
	Instruction string `json:"instruction" db:"instruction"`
	ImageURL    string `json:"image_url" db:"image_url"`
	CreatedBy   string `json:"created_by" db:"created_by"`
}

// ErrInvalid marks recipes rejected before anything is persisted.
var ErrInvalid = errors.New("invalid recipe")

// ValidateLocal rejects a recipe before anything is persisted. Empty
// titles, zero ingredients and zero steps are user errors, not storage
// errors.
func ValidateLocal(rec LocalRecipe, steps []Step) error {
	if strings.TrimSpace(rec.Title) == "" {
		return fmt.Errorf("%w: recipe title is required", ErrInvalid)
	}
	if countNonBlank(rec.IngredientLines) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrInvalid)
	}
	nonBlankSteps := 0
	for _, s := range steps {
		if strings.TrimSpace(s.Instruction) != "" {
			nonBlankSteps++
		}
	}
	if nonBlankSteps == 0 {
		return fmt.Errorf("%w: at least one step is required", ErrInvalid)
	}
	return nil
}

func countNonBlank(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

// Store is the database-backed repository for locally authored recipes.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new Store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Insert validates and persists a recipe with its steps. Blank ingredient
// lines and blank steps are dropped; step numbers are reassigned in order.
func (s *Store) Insert(ctx context.Context, rec LocalRecipe, steps []Step) (*LocalRecipe, error) {
	if err := ValidateLocal(rec, steps); err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	rec.IngredientLines = compactLines(rec.IngredientLines)

	ingredientsJSON, err := json.Marshal(rec.IngredientLines)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingredient lines: %w", err)
	}
	dietJSON, err := json.Marshal(orEmpty(rec.DietLabels))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diet labels: %w", err)
	}
	healthJSON, err := json.Marshal(orEmpty(rec.HealthLabels))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal health labels: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipes (id, title, description, image_url, ingredient_lines, calories, yield,
			diet_labels, health_labels, total_time, category, country, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.Description, rec.ImageURL, string(ingredientsJSON),
		rec.Calories, rec.Yield, string(dietJSON), string(healthJSON),
		rec.TotalTime, rec.Category, rec.Country, rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}

	n := 0
	for _, st := range steps {
		if strings.TrimSpace(st.Instruction) == "" {
			continue
		}
		n++
		_, err = tx.ExecContext(ctx,
			`INSERT INTO steps (recipe_id, step_number, instruction, image_url, created_by)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID, n, st.Instruction, st.ImageURL, rec.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert step %d: %w", n, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recipe: %w", err)
	}
	return &rec, nil
}

// ListNewest returns recipes ordered by creation time, newest first.
func (s *Store) ListNewest(ctx context.Context, limit int) ([]LocalRecipe, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, title, description, image_url, ingredient_lines, calories, yield,
			diet_labels, health_labels, total_time, category, country, created_by, created_at
		 FROM recipes ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []LocalRecipe
	for rows.Next() {
		rec, err := scanLocalRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recipes, nil
}

// Get retrieves a recipe by id. Returns nil when not found.
func (s *Store) Get(ctx context.Context, id string) (*LocalRecipe, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, title, description, image_url, ingredient_lines, calories, yield,
			diet_labels, health_labels, total_time, category, country, created_by, created_at
		 FROM recipes WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows error: %w", err)
		}
		return nil, nil
	}
	rec, err := scanLocalRecipe(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Steps returns a recipe's steps ordered by step number.
func (s *Store) Steps(ctx context.Context, recipeID string) ([]Step, error) {
	var steps []Step
	err := s.db.SelectContext(ctx, &steps,
		`SELECT recipe_id, step_number, instruction, image_url, created_by
		 FROM steps WHERE recipe_id = ? ORDER BY step_number`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	return steps, nil
}

// RawNewest returns the newest recipes as provider-native raw items for the
// aggregator, mirroring what the remote adapters produce.
func (s *Store) RawNewest(ctx context.Context, limit int) ([]json.RawMessage, error) {
	recipes, err := s.ListNewest(ctx, limit)
	if err != nil {
		return nil, err
	}
	raws := make([]json.RawMessage, 0, len(recipes))
	for _, rec := range recipes {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal recipe %s: %w", rec.ID, err)
		}
		raws = append(raws, data)
	}
	return raws, nil
}

func scanLocalRecipe(rows *sqlx.Rows) (LocalRecipe, error) {
	var rec LocalRecipe
	var ingredientsJSON, dietJSON, healthJSON string
	var calories sql.NullFloat64
	var yield, totalTime sql.NullInt64

	err := rows.Scan(
		&rec.ID, &rec.Title, &rec.Description, &rec.ImageURL, &ingredientsJSON,
		&calories, &yield, &dietJSON, &healthJSON, &totalTime,
		&rec.Category, &rec.Country, &rec.CreatedBy, &rec.CreatedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan recipe row: %w", err)
	}

	if err := json.Unmarshal([]byte(ingredientsJSON), &rec.IngredientLines); err != nil {
		return rec, fmt.Errorf("failed to unmarshal ingredient lines: %w", err)
	}
	if err := json.Unmarshal([]byte(dietJSON), &rec.DietLabels); err != nil {
		return rec, fmt.Errorf("failed to unmarshal diet labels: %w", err)
	}
	if err := json.Unmarshal([]byte(healthJSON), &rec.HealthLabels); err != nil {
		return rec, fmt.Errorf("failed to unmarshal health labels: %w", err)
	}
	if calories.Valid {
		rec.Calories = &calories.Float64
	}
	if yield.Valid {
		v := int(yield.Int64)
		rec.Yield = &v
	}
	if totalTime.Valid {
		rec.TotalTime = int(totalTime.Int64)
	}
	return rec, nil
}

func compactLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
