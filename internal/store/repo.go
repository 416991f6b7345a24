package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // occurred_at >= From
	To     time.Time // occurred_at <= To
}

// ProfileRecord is a stored user profile.
type ProfileRecord struct {
	ID            string
	DisplayName   string
	Sex           string
	BirthYear     int
	HeightCM      float64
	WeightKG      float64
	ActivityLevel string
	Goal          string
	CreatedAt     time.Time
}

// GoalsRecord holds a user's daily nutrition targets.
type GoalsRecord struct {
	UserID    string
	Calories  float64
	ProteinG  float64
	CarbsG    float64
	FatG      float64
	UpdatedAt time.Time
}

// ProfileRepo manages profiles and their nutrition goals.
type ProfileRepo interface {
	// CreateProfile inserts a profile. Returns ErrConflict if the ID is taken.
	CreateProfile(ctx context.Context, p ProfileRecord) error

	// GetProfile returns ErrNotFound when no profile has the ID.
	GetProfile(ctx context.Context, id string) (*ProfileRecord, error)

	// ListProfiles returns every profile ordered by ID.
	ListProfiles(ctx context.Context) ([]ProfileRecord, error)

	// SaveGoals inserts or replaces a user's goals.
	SaveGoals(ctx context.Context, g GoalsRecord) error

	// GetGoals returns ErrNotFound when the user has no goals.
	GetGoals(ctx context.Context, userID string) (*GoalsRecord, error)
}

// MealRecord is a stored meal entry.
type MealRecord struct {
	ID          string
	UserID      string
	Name        string
	MealType    string
	Source      string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fats        float64
	Fiber       float64
	ServingSize string
	EatenAt     time.Time
	Day         string
	CreatedAt   time.Time
}

// MealRepo manages meal entries.
type MealRepo interface {
	InsertMeal(ctx context.Context, m MealRecord) error

	// DeleteMeal returns ErrNotFound if the user has no meal with the ID.
	DeleteMeal(ctx context.Context, userID, id string) error

	// MealsForDay returns the user's meals on a local day, oldest first.
	MealsForDay(ctx context.Context, userID, day string) ([]MealRecord, error)
}

// WorkoutRecord is a stored workout. Exercises is a JSON document.
type WorkoutRecord struct {
	ID          string
	UserID      string
	Day         string
	PerformedAt time.Time
	DurationMin int
	Exercises   string
	Notes       string
}

// WorkoutRepo manages workouts.
type WorkoutRepo interface {
	InsertWorkout(ctx context.Context, w WorkoutRecord) error

	// WorkoutsForDay returns the user's workouts on a local day, oldest first.
	WorkoutsForDay(ctx context.Context, userID, day string) ([]WorkoutRecord, error)

	// RecentWorkouts returns up to limit workouts, newest first.
	RecentWorkouts(ctx context.Context, userID string, limit int) ([]WorkoutRecord, error)
}

// ScoreStateRecord is the persisted FareScore state of one user.
type ScoreStateRecord struct {
	UserID          string
	CurrentScore    int
	SmoothedScore   int
	StreakDays      int
	InactiveDays    int
	MealsMonth      int
	WorkoutsMonth   int
	PenaltiesMonth  int
	ConsistencyRate float64
	LastUpdate      time.Time
}

// ScoreEventData captures one applied action.
type ScoreEventData struct {
	UserID      string
	Action      string
	Description string
	Delta       int
	ScoreAfter  int
}

// ScoreEvent is a stored ScoreEventData with its ordering metadata.
type ScoreEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	ScoreEventData
}

// ScoreDayRecord marks a local day as closed for a user.
type ScoreDayRecord struct {
	UserID   string
	Day      string
	Active   bool
	ClosedAt time.Time
}

// ScoreCommit is one atomic score update: an optional closed day, the new
// state and the events that produced it.
type ScoreCommit struct {
	Day    *ScoreDayRecord
	State  ScoreStateRecord
	Events []ScoreEventData
}

// ScoreRepo manages FareScore state, its event log and closed days.
type ScoreRepo interface {
	// CreateState inserts the initial state. Returns ErrConflict if present.
	CreateState(ctx context.Context, st ScoreStateRecord) error

	// GetState returns ErrNotFound when the user has no state.
	GetState(ctx context.Context, userID string) (*ScoreStateRecord, error)

	// SaveState overwrites an existing state. Returns ErrNotFound if absent.
	SaveState(ctx context.Context, st ScoreStateRecord) error

	// ListStates returns states ordered by current score, highest first.
	// A limit of 0 returns all.
	ListStates(ctx context.Context, limit int) ([]ScoreStateRecord, error)

	AppendScoreEvent(ctx context.Context, data ScoreEventData) error

	// QueryScoreEvents returns a user's events newest first.
	QueryScoreEvents(ctx context.Context, userID string, opts QueryOpts) ([]ScoreEvent, error)

	// CloseDay records a processed day. Returns ErrConflict if already closed.
	CloseDay(ctx context.Context, d ScoreDayRecord) error

	// Commit writes c in one transaction. Nothing is stored if any part
	// fails; a day that is already closed returns ErrConflict.
	Commit(ctx context.Context, c ScoreCommit) error

	// LastClosedDay returns the user's latest closed day, or ErrNotFound.
	LastClosedDay(ctx context.Context, userID string) (*ScoreDayRecord, error)

	// RecentDays returns up to limit closed days strictly before the given
	// day, newest first.
	RecentDays(ctx context.Context, userID, before string, limit int) ([]ScoreDayRecord, error)
}

// SocialRepo manages friendships. Friendships are stored in both directions.
type SocialRepo interface {
	AddFriendship(ctx context.Context, userID, friendID string) error

	// RemoveFriendship returns ErrNotFound if the two are not friends.
	RemoveFriendship(ctx context.Context, userID, friendID string) error

	FriendIDs(ctx context.Context, userID string) ([]string, error)
}

// ChatMessageRecord is one turn of a coach conversation.
type ChatMessageRecord struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	UserID    string
	Role      string
	Content   string
	Fallback  bool
}

// ChatRepo manages coach conversation history.
type ChatRepo interface {
	AppendChat(ctx context.Context, m ChatMessageRecord) error

	// RecentChat returns the last limit messages, oldest first.
	RecentChat(ctx context.Context, userID string, limit int) ([]ChatMessageRecord, error)

	ClearChat(ctx context.Context, userID string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first. An empty purpose matches
	// every event.
	QueryLLMEvents(ctx context.Context, purpose string, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns ErrNotFound when no event has the ID.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
