package api

// Submission is the recitation session payload sent to
// POST /api/recitations and stored in the offline queue. Immutable once
// assembled.
type Submission struct {
	PageNumber     int    `json:"page_number" validate:"required,min=1,max=604"`
	SurahName      string `json:"surah_name"`
	Juz            int    `json:"juz"`
	Rating         string `json:"rating" validate:"required,oneof=Perfect Good Okay Bad Rememorize"`
	ManualMistakes []int  `json:"manual_mistakes"`
	Notes          string `json:"notes" validate:"max=500"`
	RecitationDate string `json:"recitation_date"`
	AudioRecorded  bool   `json:"audio_recorded"`
}

// Ratings enumerates the accepted rating values, best to worst.
var Ratings = []string{"Perfect", "Good", "Okay", "Bad", "Rememorize"}

// Recitation is a stored session record as returned by the backend.
type Recitation struct {
	ID             int64   `json:"id"`
	PageNumber     int     `json:"page_number"`
	SurahName      string  `json:"surah_name"`
	Juz            int     `json:"juz"`
	Rating         string  `json:"rating"`
	ManualMistakes []int   `json:"manual_mistakes"`
	Notes          string  `json:"notes"`
	RecitationDate string  `json:"recitation_date"`
	AudioRecorded  bool    `json:"audio_recorded"`
	FixedItDate    *string `json:"fixed_it_date"`
	PrevRating     *string `json:"prev_rating"`
	CreatedAt      string  `json:"created_at"`
}

// RecitationUpdate is a partial field update for PUT /api/recitations/{id}.
// Nil fields are omitted from the request body.
type RecitationUpdate struct {
	Notes       *string `json:"notes,omitempty"`
	FixedItDate *string `json:"fixed_it_date,omitempty"`
	PrevRating  *string `json:"prev_rating,omitempty"`
}

// CreatedRecitation is the acknowledgement returned by POST /api/recitations.
type CreatedRecitation struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// Stats is the aggregate view served by GET /api/recitations/stats.
type Stats struct {
	TotalRecitations    int            `json:"total_recitations"`
	RatingDistribution  map[string]int `json:"rating_distribution"`
	PagesCovered        int            `json:"pages_covered"`
	SurahsCovered       int            `json:"surahs_covered"`
	RecentActivity7Days int            `json:"recent_activity_7_days"`
}
