package domain

import "time"

// SentimentLabel is the categorical polarity of analyzed text
type SentimentLabel string

// sentiment labels
const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentUnknown  SentimentLabel = "unknown"
)

// SentimentResult holds a raw lexicon score and its derived label
type SentimentResult struct {
	Score       float64
	Comparative float64 // score normalized by token count
	Label       SentimentLabel
}

// RawComment is a single comment body pulled from a discussion thread.
// Transient, exists only during one fetch/analyze cycle.
type RawComment struct {
	Body   string
	PostID string
}

// TrendingTopic is a frequently mentioned term across a title's discussion,
// with sentiment computed over the comments mentioning it
type TrendingTopic struct {
	Keyword   string         `json:"keyword"`
	Count     int            `json:"count"`
	Sentiment SentimentLabel `json:"sentiment"`
	Score     float64        `json:"score"`
}

// CommentSentimentAnalysis aggregates per-comment sentiment for one title
type CommentSentimentAnalysis struct {
	TotalComments    int             `json:"total_comments"`
	AnalyzedComments int             `json:"analyzed_comments"`
	AverageSentiment float64         `json:"average_sentiment"`
	Label            SentimentLabel  `json:"label"`
	PositiveCount    int             `json:"positive_count"`
	NegativeCount    int             `json:"negative_count"`
	NeutralCount     int             `json:"neutral_count"`
	TrendingTopics   []TrendingTopic `json:"trending_topics"`
}

// BuzzLabel is a discrete summary of how much and how positively a title is
// being discussed
type BuzzLabel string

// buzz labels, from no engagement to strong directional trends
const (
	BuzzLow              BuzzLabel = "low"
	BuzzNiche            BuzzLabel = "niche-interest"
	BuzzPopular          BuzzLabel = "popular-discussion"
	BuzzControversial    BuzzLabel = "controversial"
	BuzzTrendingMixed    BuzzLabel = "trending-mixed"
	BuzzTrendingPositive BuzzLabel = "trending-positive"
	BuzzTrendingNegative BuzzLabel = "trending-negative"
)

// SocialSignal is the full social-buzz picture attached to a ContentItem for
// the duration of a recommendation request
type SocialSignal struct {
	Buzz          BuzzLabel                `json:"buzz"`
	Analysis      CommentSentimentAnalysis `json:"analysis"`
	CommentVolume int                      `json:"comment_volume"`
	FetchedAt     time.Time                `json:"fetched_at"`
}

// UnknownSignal returns the neutral signal used when discussion data could not
// be fetched or contained nothing analyzable
func UnknownSignal() *SocialSignal {
	return &SocialSignal{
		Buzz:      BuzzLow,
		Analysis:  CommentSentimentAnalysis{Label: SentimentUnknown},
		FetchedAt: time.Now(),
	}
}
