// Package classifier suggests a complaint category from free text using a
// multinomial naive Bayes model. The model is built once from a static
// training corpus at startup and injected where needed; it holds no mutable
// state after construction.
package classifier

import (
	"math"
	"strings"
)

// Document pairs a training text with its category label.
type Document struct {
	Text     string
	Category string
}

// DefaultCorpus is the seed training data carried by the service
// configuration. Expand for production.
var DefaultCorpus = []Document{
	{Text: "garbage not collected", Category: "sanitation"},
	{Text: "pothole on main street", Category: "roads"},
	{Text: "water pipe leaking", Category: "utilities"},
	{Text: "trash overflow", Category: "sanitation"},
	{Text: "street light broken", Category: "utilities"},
	{Text: "road blocked", Category: "roads"},
}

// Prediction is a scored category candidate.
type Prediction struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Classifier is an immutable trained model.
type Classifier struct {
	categories []string
	docCounts  map[string]int
	wordCounts map[string]map[string]int
	totalWords map[string]int
	vocabulary map[string]struct{}
	totalDocs  int
}

// New trains a classifier from the given corpus. Documents with an empty
// text or category are skipped.
func New(corpus []Document) *Classifier {
	c := &Classifier{
		docCounts:  make(map[string]int),
		wordCounts: make(map[string]map[string]int),
		totalWords: make(map[string]int),
		vocabulary: make(map[string]struct{}),
	}
	for _, doc := range corpus {
		words := tokenize(doc.Text)
		if doc.Category == "" || len(words) == 0 {
			continue
		}
		if _, ok := c.wordCounts[doc.Category]; !ok {
			c.categories = append(c.categories, doc.Category)
			c.wordCounts[doc.Category] = make(map[string]int)
		}
		c.docCounts[doc.Category]++
		c.totalDocs++
		for _, w := range words {
			c.wordCounts[doc.Category][w]++
			c.totalWords[doc.Category]++
			c.vocabulary[w] = struct{}{}
		}
	}
	return c
}

// Classify returns the best-scoring category for the text, or "" when the
// model is empty or the text has no tokens.
func (c *Classifier) Classify(text string) string {
	predictions := c.Classifications(text)
	if len(predictions) == 0 {
		return ""
	}
	return predictions[0].Category
}

// Classifications scores every known category against the text, best first.
// Scores are log-probabilities with Laplace smoothing.
func (c *Classifier) Classifications(text string) []Prediction {
	words := tokenize(text)
	if c.totalDocs == 0 || len(words) == 0 {
		return nil
	}

	vocabSize := len(c.vocabulary)
	result := make([]Prediction, 0, len(c.categories))
	for _, category := range c.categories {
		score := math.Log(float64(c.docCounts[category]) / float64(c.totalDocs))
		for _, w := range words {
			count := c.wordCounts[category][w]
			score += math.Log(float64(count+1) / float64(c.totalWords[category]+vocabSize))
		}
		result = append(result, Prediction{Category: category, Score: score})
	}

	// Insertion sort keeps ties in stable training order.
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j].Score > result[j-1].Score; j-- {
			result[j], result[j-1] = result[j-1], result[j]
		}
	}
	return result
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"()")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}
