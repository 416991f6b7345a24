package store

import (
	"context"
	"fmt"

	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions migrated by ent's schema engine on Open. Every table
// holding per-user data except the append-only logs references profiles
// and is cleared with it.
var (
	profilesTable = entschema.NewTable("profiles").
			AddPrimary(&entschema.Column{Name: "id", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "display_name", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "sex", Type: field.TypeString, Default: ""}).
			AddColumn(&entschema.Column{Name: "birth_year", Type: field.TypeInt, Default: 0}).
			AddColumn(&entschema.Column{Name: "height_cm", Type: field.TypeFloat64, Default: 0}).
			AddColumn(&entschema.Column{Name: "weight_kg", Type: field.TypeFloat64, Default: 0}).
			AddColumn(&entschema.Column{Name: "activity_level", Type: field.TypeString, Default: ""}).
			AddColumn(&entschema.Column{Name: "goal", Type: field.TypeString, Default: ""}).
			AddColumn(&entschema.Column{Name: "created_at", Type: field.TypeTime})

	goalsTable = withProfile(entschema.NewTable("goals").
			AddPrimary(&entschema.Column{Name: "user_id", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "calories", Type: field.TypeFloat64}).
			AddColumn(&entschema.Column{Name: "protein_g", Type: field.TypeFloat64}).
			AddColumn(&entschema.Column{Name: "carbs_g", Type: field.TypeFloat64}).
			AddColumn(&entschema.Column{Name: "fat_g", Type: field.TypeFloat64}).
			AddColumn(&entschema.Column{Name: "updated_at", Type: field.TypeTime}), "user_id")

	mealsTable = withProfile(entschema.NewTable("meals").
			AddPrimary(&entschema.Column{Name: "id", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "user_id", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "name", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "meal_type", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "source", Type: field.TypeString, Comment: "manual, parsed, label or import"}).
			AddColumn(&entschema.Column{Name: "calories", Type: field.TypeFloat64, Default: 0}).
			AddColumn(&entschema.Column{Name: "protein", Type: field.TypeFloat64, Default: 0}).
			AddColumn(&entschema.Column{Name: "carbs", Type: field.TypeFloat64, Default: 0}).
			AddColumn(&entschema.Column{Name: "fats", Type: field.TypeFloat64, Default: 0}).
			AddColumn(&entschema.Column{Name: "fiber", Type: field.TypeFloat64, Default: 0}).
			AddColumn(&entschema.Column{Name: "serving_size", Type: field.TypeString, Default: ""}).
			AddColumn(&entschema.Column{Name: "eaten_at", Type: field.TypeTime}).
			AddColumn(&entschema.Column{Name: "local_day", Type: field.TypeString, Comment: "YYYY-MM-DD in the user's timezone"}).
			AddColumn(&entschema.Column{Name: "created_at", Type: field.TypeTime}).
			AddIndex("meals_user_day", false, []string{"user_id", "local_day"}), "user_id")

	workoutsTable = withProfile(entschema.NewTable("workouts").
			AddPrimary(&entschema.Column{Name: "id", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "user_id", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "local_day", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "performed_at", Type: field.TypeTime}).
			AddColumn(&entschema.Column{Name: "duration_min", Type: field.TypeInt, Default: 0}).
			AddColumn(&entschema.Column{Name: "exercises", Type: field.TypeString, Comment: "JSON list of exercises and sets"}).
			AddColumn(&entschema.Column{Name: "notes", Type: field.TypeString, Default: ""}).
			AddIndex("workouts_user_day", false, []string{"user_id", "local_day"}), "user_id")

	fareScoresTable = withProfile(entschema.NewTable("fare_scores").
			AddPrimary(&entschema.Column{Name: "user_id", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "current_score", Type: field.TypeInt}).
			AddColumn(&entschema.Column{Name: "smoothed_score", Type: field.TypeInt}).
			AddColumn(&entschema.Column{Name: "streak_days", Type: field.TypeInt, Default: 0}).
			AddColumn(&entschema.Column{Name: "inactive_days", Type: field.TypeInt, Default: 0}).
			AddColumn(&entschema.Column{Name: "meals_month", Type: field.TypeInt, Default: 0}).
			AddColumn(&entschema.Column{Name: "workouts_month", Type: field.TypeInt, Default: 0}).
			AddColumn(&entschema.Column{Name: "penalties_month", Type: field.TypeInt, Default: 0}).
			AddColumn(&entschema.Column{Name: "consistency_rate", Type: field.TypeFloat64, Default: 0}).
			AddColumn(&entschema.Column{Name: "last_update", Type: field.TypeTime}), "user_id")

	scoreEventsTable = eventTable("score_events").
				AddColumn(&entschema.Column{Name: "user_id", Type: field.TypeString}).
				AddColumn(&entschema.Column{Name: "action", Type: field.TypeString}).
				AddColumn(&entschema.Column{Name: "description", Type: field.TypeString, Default: ""}).
				AddColumn(&entschema.Column{Name: "delta", Type: field.TypeInt}).
				AddColumn(&entschema.Column{Name: "score_after", Type: field.TypeInt}).
				AddIndex("score_events_user", false, []string{"user_id", "sequence"})

	scoreDaysTable = entschema.NewTable("score_days").
			AddPrimary(&entschema.Column{Name: "user_id", Type: field.TypeString}).
			AddPrimary(&entschema.Column{Name: "local_day", Type: field.TypeString}).
			AddColumn(&entschema.Column{Name: "active", Type: field.TypeBool}).
			AddColumn(&entschema.Column{Name: "closed_at", Type: field.TypeTime})

	friendshipsTable = withProfile(withProfile(entschema.NewTable("friendships").
				AddPrimary(&entschema.Column{Name: "user_id", Type: field.TypeString}).
				AddPrimary(&entschema.Column{Name: "friend_id", Type: field.TypeString}).
				AddColumn(&entschema.Column{Name: "created_at", Type: field.TypeTime}), "user_id"), "friend_id")

	chatMessagesTable = eventTable("chat_messages").
				AddColumn(&entschema.Column{Name: "user_id", Type: field.TypeString}).
				AddColumn(&entschema.Column{Name: "role", Type: field.TypeString}).
				AddColumn(&entschema.Column{Name: "content", Type: field.TypeString, Size: 1 << 20}).
				AddColumn(&entschema.Column{Name: "fallback", Type: field.TypeBool, Default: false})

	llmRequestEventsTable = eventTable("llm_request_events").
				AddColumn(&entschema.Column{Name: "provider", Type: field.TypeString}).
				AddColumn(&entschema.Column{Name: "model", Type: field.TypeString}).
				AddColumn(&entschema.Column{Name: "purpose", Type: field.TypeString, Comment: "meal-parse, nutrition-label or coach"}).
				AddColumn(&entschema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0}).
				AddColumn(&entschema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0}).
				AddColumn(&entschema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0}).
				AddColumn(&entschema.Column{Name: "success", Type: field.TypeBool}).
				AddColumn(&entschema.Column{Name: "error_message", Type: field.TypeString, Default: ""}).
				AddColumn(&entschema.Column{Name: "request_body", Type: field.TypeString, Size: 1 << 20, Default: ""}).
				AddColumn(&entschema.Column{Name: "response_body", Type: field.TypeString, Size: 1 << 20, Default: ""}).
				AddIndex("llm_request_events_purpose", false, []string{"purpose"})

	tables = []*entschema.Table{
		profilesTable,
		goalsTable,
		mealsTable,
		workoutsTable,
		fareScoresTable,
		scoreEventsTable,
		scoreDaysTable,
		friendshipsTable,
		chatMessagesTable,
		llmRequestEventsTable,
	}
)

// eventTable starts an append-only table ordered by the global sequence.
func eventTable(name string) *entschema.Table {
	return entschema.NewTable(name).
		AddPrimary(&entschema.Column{Name: "id", Type: field.TypeInt64, Increment: true}).
		AddColumn(&entschema.Column{Name: "sequence", Type: field.TypeInt64, Comment: "global sequence number"}).
		AddColumn(&entschema.Column{Name: "occurred_at", Type: field.TypeTime}).
		AddIndex(name+"_sequence", true, []string{"sequence"})
}

// withProfile makes column of t reference profiles.id with cascading deletes.
func withProfile(t *entschema.Table, column string) *entschema.Table {
	c, _ := t.Column(column)
	id, _ := profilesTable.Column("id")
	return t.AddForeignKey(&entschema.ForeignKey{
		Symbol:     t.Name + "_" + column + "_profiles",
		Columns:    []*entschema.Column{c},
		RefTable:   profilesTable,
		RefColumns: []*entschema.Column{id},
		OnDelete:   entschema.Cascade,
	})
}

func (s *Store) migrate(ctx context.Context) error {
	m, err := entschema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
