package ratings

import "time"

// RatingContext is the aspect of a place a rating applies to.
type RatingContext string

const (
	ContextDiversity    RatingContext = "diversity"
	ContextRenewable    RatingContext = "renewable"
	ContextFairness     RatingContext = "fairness"
	ContextHumanity     RatingContext = "humanity"
	ContextTransparency RatingContext = "transparency"
	ContextSolidarity   RatingContext = "solidarity"
)

// AllContexts lists the six rating contexts in reporting order.
func AllContexts() []RatingContext {
	return []RatingContext{
		ContextDiversity,
		ContextRenewable,
		ContextFairness,
		ContextHumanity,
		ContextTransparency,
		ContextSolidarity,
	}
}

// ParseContext resolves a context name.
func ParseContext(s string) (RatingContext, bool) {
	for _, c := range AllContexts() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

const (
	// MinRatingValue is the worst rating.
	MinRatingValue = -1
	// MaxRatingValue is the best rating.
	MaxRatingValue = 2
)

// Rating is a user-submitted assessment of a place. A rating is live while
// ArchivedAt is unset; archiving never deletes rows.
type Rating struct {
	ID         string        `json:"id"`
	PlaceID    string        `json:"placeId"`
	CreatedAt  time.Time     `json:"createdAt"`
	ArchivedAt *time.Time    `json:"archivedAt,omitempty"`
	Title      string        `json:"title"`
	Value      int           `json:"value"`
	Context    RatingContext `json:"context"`
	Source     string        `json:"source,omitempty"`
}

// IsLive reports whether the rating has not been archived.
func (r *Rating) IsLive() bool {
	return r.ArchivedAt == nil
}

// Comment is a free-text remark attached to a rating.
type Comment struct {
	ID         string     `json:"id"`
	RatingID   string     `json:"ratingId"`
	CreatedAt  time.Time  `json:"createdAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
	Text       string     `json:"text"`
}

// AvgRatings reports a place's rating as six per-context averages. Each
// average is the clamped mean of the live ratings in that context, zero when
// the context has none.
type AvgRatings struct {
	Diversity    float64 `json:"diversity"`
	Renewable    float64 `json:"renewable"`
	Fairness     float64 `json:"fairness"`
	Humanity     float64 `json:"humanity"`
	Transparency float64 `json:"transparency"`
	Solidarity   float64 `json:"solidarity"`
}

// Total is the unweighted mean over the six context averages.
func (a AvgRatings) Total() float64 {
	return (a.Diversity + a.Renewable + a.Fairness + a.Humanity + a.Transparency + a.Solidarity) / 6.0
}

// Avg computes the per-context averages over the given ratings. Archived
// ratings are ignored.
func Avg(ratingList []Rating) AvgRatings {
	sums := make(map[RatingContext]float64)
	counts := make(map[RatingContext]int)
	for i := range ratingList {
		r := &ratingList[i]
		if !r.IsLive() {
			continue
		}
		sums[r.Context] += float64(r.Value)
		counts[r.Context]++
	}
	avgOf := func(c RatingContext) float64 {
		n := counts[c]
		if n == 0 {
			return 0
		}
		return clamp(sums[c]/float64(n), MinRatingValue, MaxRatingValue)
	}
	return AvgRatings{
		Diversity:    avgOf(ContextDiversity),
		Renewable:    avgOf(ContextRenewable),
		Fairness:     avgOf(ContextFairness),
		Humanity:     avgOf(ContextHumanity),
		Transparency: avgOf(ContextTransparency),
		Solidarity:   avgOf(ContextSolidarity),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
