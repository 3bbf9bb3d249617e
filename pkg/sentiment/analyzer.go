package sentiment

import (
	"strings"
	"unicode"

	"github.com/umputun/watchscope/pkg/domain"
)

// default number of trending topics reported per analysis
const defaultTopTopics = 10

// minimum token length counted toward trending topics
const minTopicLength = 3

// Analyzer scores free text with the built-in valence lexicon and aggregates
// per-title sentiment. Stateless and safe for concurrent use.
type Analyzer struct {
	topTopics int
}

// NewAnalyzer creates an analyzer reporting the default number of trending topics
func NewAnalyzer() *Analyzer {
	return &Analyzer{topTopics: defaultTopTopics}
}

// Score runs the lexicon over a single text and returns the signed score, the
// length-normalized comparative score, and the derived label
func (a *Analyzer) Score(text string) domain.SentimentResult {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return domain.SentimentResult{Label: domain.SentimentNeutral}
	}

	var score float64
	for i, tok := range tokens {
		v, ok := lexicon[tok]
		if !ok {
			continue
		}
		// a preceding negator flips the valence
		if i > 0 && negators[tokens[i-1]] {
			v = -v
		}
		score += v
	}

	res := domain.SentimentResult{
		Score:       score,
		Comparative: score / float64(len(tokens)),
	}
	switch {
	case score > 0:
		res.Label = domain.SentimentPositive
	case score < 0:
		res.Label = domain.SentimentNegative
	default:
		res.Label = domain.SentimentNeutral
	}
	return res
}

// Analyze aggregates sentiment over a set of comments. Empty or
// whitespace-only bodies count toward TotalComments but are not analyzed.
func (a *Analyzer) Analyze(comments []domain.RawComment) domain.CommentSentimentAnalysis {
	analysis := domain.CommentSentimentAnalysis{TotalComments: len(comments)}

	analyzed := make([]string, 0, len(comments))
	var sumComparative float64
	for _, c := range comments {
		body := strings.TrimSpace(c.Body)
		if body == "" {
			continue
		}
		analysis.AnalyzedComments++
		analyzed = append(analyzed, body)

		res := a.Score(body)
		sumComparative += res.Comparative
		switch res.Label {
		case domain.SentimentPositive:
			analysis.PositiveCount++
		case domain.SentimentNegative:
			analysis.NegativeCount++
		default:
			analysis.NeutralCount++
		}
	}

	if analysis.AnalyzedComments == 0 {
		analysis.Label = domain.SentimentUnknown
		return analysis
	}

	analysis.AverageSentiment = sumComparative / float64(analysis.AnalyzedComments)
	switch {
	case analysis.AverageSentiment > 0:
		analysis.Label = domain.SentimentPositive
	case analysis.AverageSentiment < 0:
		analysis.Label = domain.SentimentNegative
	default:
		analysis.Label = domain.SentimentNeutral
	}

	analysis.TrendingTopics = a.trendingTopics(analyzed)
	return analysis
}

// trendingTopics frequency-ranks non-stopword tokens across all analyzed
// bodies and re-scores the comments mentioning each of the top terms
func (a *Analyzer) trendingTopics(bodies []string) []domain.TrendingTopic {
	counts := make(map[string]int)
	var order []string // first-seen order, the tie-break for equal counts

	for _, body := range bodies {
		for _, tok := range tokenize(body) {
			if len(tok) < minTopicLength || stopwords[tok] {
				continue
			}
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	// selection sort over first-seen order keeps the tie-break stable
	top := make([]string, 0, a.topTopics)
	used := make(map[string]bool)
	for len(top) < a.topTopics {
		best := ""
		for _, tok := range order {
			if used[tok] {
				continue
			}
			if best == "" || counts[tok] > counts[best] {
				best = tok
			}
		}
		if best == "" {
			break
		}
		used[best] = true
		top = append(top, best)
	}

	topics := make([]domain.TrendingTopic, 0, len(top))
	for _, keyword := range top {
		topic := domain.TrendingTopic{Keyword: keyword, Count: counts[keyword]}

		// topic sentiment from the subset of comments containing the keyword
		var sum float64
		var n int
		for _, body := range bodies {
			if !containsToken(body, keyword) {
				continue
			}
			sum += a.Score(body).Comparative
			n++
		}
		if n > 0 {
			topic.Score = sum / float64(n)
		}
		switch {
		case topic.Score > 0:
			topic.Sentiment = domain.SentimentPositive
		case topic.Score < 0:
			topic.Sentiment = domain.SentimentNegative
		default:
			topic.Sentiment = domain.SentimentNeutral
		}
		topics = append(topics, topic)
	}
	return topics
}

// tokenize lower-cases and splits on anything that is not a letter, digit or
// in-word apostrophe
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// containsToken reports whether the body contains the exact token
func containsToken(body, token string) bool {
	for _, tok := range tokenize(body) {
		if tok == token {
			return true
		}
	}
	return false
}
