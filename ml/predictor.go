package ml

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Predictor runs the full inference pipeline over an immutable artifact set:
// coerce payload, encode topic, classify, decode level. It holds no mutable
// state beyond an optional memoization cache, so it is safe for concurrent
// use.
type Predictor struct {
	model  Classifier
	topics *LabelEncoder
	levels *LabelEncoder
	cache  *lru.Cache[Request, string]
}

// NewPredictor builds a Predictor from loaded artifacts. cacheSize <= 0
// disables memoization.
func NewPredictor(artifacts *ArtifactSet, cacheSize int) (*Predictor, error) {
	if artifacts == nil || artifacts.Model == nil || artifacts.Topics == nil || artifacts.Levels == nil {
		return nil, errors.New("artifact set is incomplete")
	}

	p := &Predictor{
		model:  artifacts.Model,
		topics: artifacts.Topics,
		levels: artifacts.Levels,
	}
	if cacheSize > 0 {
		cache, err := lru.New[Request, string](cacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

// PredictLevel produces the level label for a raw payload. Every failure in
// the pipeline comes back as one of the typed errors in this package; the
// transport layer decides how to surface them.
func (p *Predictor) PredictLevel(payload map[string]interface{}) (string, error) {
	req, err := ParseRequest(payload)
	if err != nil {
		return "", err
	}

	// The model is deterministic and the artifacts never change, so an
	// identical request always maps to the same level.
	if p.cache != nil {
		if level, ok := p.cache.Get(req); ok {
			return level, nil
		}
	}

	vector, err := AssembleFeatures(req, p.topics)
	if err != nil {
		return "", err
	}

	label, _, err := p.model.Predict(vector)
	if err != nil {
		return "", &ModelInferenceError{Err: err}
	}
	level, err := p.levels.InverseTransform(label)
	if err != nil {
		return "", &ModelInferenceError{Err: err}
	}

	if p.cache != nil {
		p.cache.Add(req, level)
	}
	return level, nil
}

// Levels returns the label vocabulary the predictor can emit.
func (p *Predictor) Levels() []string {
	return p.levels.Classes()
}
