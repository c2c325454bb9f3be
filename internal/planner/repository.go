package planner

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository is the database-backed repository for planned meals.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert persists a new plan record and returns it with its id set.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	rec.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO planned_meals (user_id, recipe_id, recipe_external_id, recipe_title,
			recipe_image_url, recipe_source, meal_date, meal_type, portions, notes, is_notified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, nullable(rec.RecipeID), nullable(rec.RecipeExternalID), rec.RecipeTitle,
		rec.RecipeImageURL, rec.RecipeSource, rec.MealDate, rec.MealType,
		rec.Portions, rec.Notes, rec.Notified, rec.CreatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("failed to insert planned meal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("failed to read planned meal id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// ListByUser returns a user's plans ordered by date then slot.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, user_id, recipe_id, recipe_external_id, recipe_title, recipe_image_url,
			recipe_source, meal_date, meal_type, portions, notes, is_notified, created_at
		 FROM planned_meals WHERE user_id = ? ORDER BY meal_date, meal_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planned meals: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// DueReminders returns plans dated day that have not been notified yet.
func (r *Repository) DueReminders(ctx context.Context, day time.Time) ([]Record, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, user_id, recipe_id, recipe_external_id, recipe_title, recipe_image_url,
			recipe_source, meal_date, meal_type, portions, notes, is_notified, created_at
		 FROM planned_meals WHERE meal_date = ? AND is_notified = 0 ORDER BY id`,
		day.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Reschedule moves a plan to a new date and resets its notified flag so the
// reminder fires again on the new day.
func (r *Repository) Reschedule(ctx context.Context, id int64, userID, newDate string) error {
	if _, err := time.Parse(DateLayout, newDate); err != nil {
		return fmt.Errorf("invalid meal date %q: %w", newDate, err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE planned_meals SET meal_date = ?, is_notified = 0 WHERE id = ? AND user_id = ?`,
		newDate, id, userID)
	if err != nil {
		return fmt.Errorf("failed to reschedule planned meal: %w", err)
	}
	return requireRow(res, id)
}

// MarkNotified flips the notified flag on a plan.
func (r *Repository) MarkNotified(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE planned_meals SET is_notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark planned meal notified: %w", err)
	}
	return requireRow(res, id)
}

// Delete removes a user's plan.
func (r *Repository) Delete(ctx context.Context, id int64, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM planned_meals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete planned meal: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("planned meal %d not found", id)
	}
	return nil
}

func scanRecords(rows *sqlx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var recipeID, externalID sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.UserID, &recipeID, &externalID, &rec.RecipeTitle,
			&rec.RecipeImageURL, &rec.RecipeSource, &rec.MealDate, &rec.MealType,
			&rec.Portions, &rec.Notes, &rec.Notified, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planned meal row: %w", err)
		}
		rec.RecipeID = recipeID.String
		rec.RecipeExternalID = externalID.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
