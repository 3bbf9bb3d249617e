package buzz

import (
	"math"

	"github.com/umputun/watchscope/pkg/config"
	"github.com/umputun/watchscope/pkg/domain"
)

// Classifier maps (sentiment analysis, comment volume) to a discrete buzz
// label. All thresholds come from configuration so they can be tuned and
// tested independently of the classification logic.
type Classifier struct {
	cfg config.BuzzConfig
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(cfg config.BuzzConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify is a total function: every (analysis, volume) pair maps to exactly
// one label. Rules are checked in priority order, first match wins.
func (c *Classifier) Classify(analysis domain.CommentSentimentAnalysis, volume int) domain.BuzzLabel {
	// no analyzable discussion at all
	if analysis.AnalyzedComments == 0 {
		return domain.BuzzLow
	}

	highVolume := volume >= c.cfg.HighVolume
	mediumVolume := volume >= c.cfg.MediumVolume

	// high volume with a strong directional lean
	if highVolume && math.Abs(analysis.AverageSentiment) >= c.cfg.StrongSentiment {
		if analysis.AverageSentiment > 0 {
			return domain.BuzzTrendingPositive
		}
		return domain.BuzzTrendingNegative
	}

	// high volume with near-balanced polarity buckets
	if highVolume && c.balanced(analysis) {
		if c.bothBucketsSubstantial(analysis) {
			return domain.BuzzControversial
		}
		return domain.BuzzTrendingMixed
	}

	// medium volume (high volume without a trend falls through to here too)
	if mediumVolume {
		if c.oneSided(analysis) {
			return domain.BuzzPopular
		}
		return domain.BuzzControversial
	}

	// low but non-zero engagement
	if volume > 0 || analysis.AnalyzedComments > 0 {
		return domain.BuzzNiche
	}

	return domain.BuzzLow
}

// balanced reports whether positive and negative buckets are within the
// configured ratio band of each other
func (c *Classifier) balanced(analysis domain.CommentSentimentAnalysis) bool {
	hi := float64(max(analysis.PositiveCount, analysis.NegativeCount))
	lo := float64(min(analysis.PositiveCount, analysis.NegativeCount))
	if lo == 0 {
		return false
	}
	return hi <= c.cfg.BalanceRatio*lo
}

// bothBucketsSubstantial reports whether both polarity buckets exceed the
// minimum share of analyzed comments, the mark of a genuinely split audience
func (c *Classifier) bothBucketsSubstantial(analysis domain.CommentSentimentAnalysis) bool {
	minCount := c.cfg.MinBucketShare * float64(analysis.AnalyzedComments)
	return float64(analysis.PositiveCount) >= minCount && float64(analysis.NegativeCount) >= minCount
}

// oneSided reports whether one polarity bucket clearly dominates the other
func (c *Classifier) oneSided(analysis domain.CommentSentimentAnalysis) bool {
	return !c.balanced(analysis)
}
