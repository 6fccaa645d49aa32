package ml

import (
	"errors"
	"testing"
)

type fakeClassifier struct {
	label int
	err   error
	calls int
}

func (f *fakeClassifier) Predict(features []float64) (int, float64, error) {
	f.calls++
	return f.label, 0.9, f.err
}

func testArtifacts(t *testing.T, model Classifier) *ArtifactSet {
	t.Helper()
	topics := NewLabelEncoder()
	if err := topics.Fit([]string{"algebra", "geometry"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	levels := NewLabelEncoder()
	if err := levels.Fit([]string{"beginner", "intermediate", "advanced"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &ArtifactSet{Model: model, Topics: topics, Levels: levels}
}

func TestPredictorPredictLevel(t *testing.T) {
	// Level codes follow sorted order: advanced=0, beginner=1, intermediate=2.
	predictor, err := NewPredictor(testArtifacts(t, &fakeClassifier{label: 2}), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	level, err := predictor.PredictLevel(validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level != "intermediate" {
		t.Fatalf("expected intermediate, got %q", level)
	}
}

func TestPredictorPayloadErrors(t *testing.T) {
	predictor, err := NewPredictor(testArtifacts(t, &fakeClassifier{label: 0}), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := validPayload()
	delete(payload, FieldAttempts)
	if _, err := predictor.PredictLevel(payload); err == nil {
		t.Fatal("expected error for missing field")
	}

	payload = validPayload()
	payload[FieldTopic] = "quantum_foo"
	_, err = predictor.PredictLevel(payload)
	var unknown *UnknownTopicError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTopicError, got %v", err)
	}
}

func TestPredictorModelFailure(t *testing.T) {
	model := &fakeClassifier{err: errors.New("shape mismatch")}
	predictor, err := NewPredictor(testArtifacts(t, model), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = predictor.PredictLevel(validPayload())
	var inference *ModelInferenceError
	if !errors.As(err, &inference) {
		t.Fatalf("expected ModelInferenceError, got %v", err)
	}
}

func TestPredictorClassIdOutOfRange(t *testing.T) {
	// The classifier emits a class id the level encoder has never seen.
	predictor, err := NewPredictor(testArtifacts(t, &fakeClassifier{label: 7}), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = predictor.PredictLevel(validPayload())
	var inference *ModelInferenceError
	if !errors.As(err, &inference) {
		t.Fatalf("expected ModelInferenceError, got %v", err)
	}
}

func TestPredictorCacheDeterminism(t *testing.T) {
	model := &fakeClassifier{label: 1}
	predictor, err := NewPredictor(testArtifacts(t, model), 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := predictor.PredictLevel(validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := predictor.PredictLevel(validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical predictions, got %q and %q", first, second)
	}
	if model.calls != 1 {
		t.Fatalf("expected one model call, got %d", model.calls)
	}
}

func TestNewPredictorIncompleteArtifacts(t *testing.T) {
	if _, err := NewPredictor(nil, 0); err == nil {
		t.Fatal("expected error for nil artifact set")
	}
	if _, err := NewPredictor(&ArtifactSet{}, 0); err == nil {
		t.Fatal("expected error for empty artifact set")
	}
}
