package ml

import (
	"strconv"
	"strings"
)

// Payload keys expected in a prediction request.
const (
	FieldTopic    = "topic"
	FieldAccuracy = "accuracy_percent"
	FieldAvgTime  = "avg_time_seconds"
	FieldAttempts = "attempts"
)

// Request is the coerced form of a prediction payload. All downstream code
// can assume it is well formed.
type Request struct {
	Topic    string
	Accuracy float64
	AvgTime  float64
	Attempts int
}

// ParseRequest coerces an untyped payload into a Request. All four keys must
// be present and coercible or the payload is rejected as a whole.
func ParseRequest(payload map[string]interface{}) (Request, error) {
	topic, err := stringField(payload, FieldTopic)
	if err != nil {
		return Request{}, err
	}
	accuracy, err := floatField(payload, FieldAccuracy)
	if err != nil {
		return Request{}, err
	}
	avgTime, err := floatField(payload, FieldAvgTime)
	if err != nil {
		return Request{}, err
	}
	attempts, err := intField(payload, FieldAttempts)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Topic:    topic,
		Accuracy: accuracy,
		AvgTime:  avgTime,
		Attempts: attempts,
	}, nil
}

// AssembleFeatures encodes the topic and builds the model input vector.
// The order must match training exactly: accuracy, avg time, attempts,
// encoded topic.
func AssembleFeatures(req Request, topics *LabelEncoder) ([]float64, error) {
	code, err := topics.Transform(req.Topic)
	if err != nil {
		return nil, &UnknownTopicError{Topic: req.Topic}
	}
	return []float64{req.Accuracy, req.AvgTime, float64(req.Attempts), float64(code)}, nil
}

// FeatureNames returns the feature order the classifier is trained on.
func FeatureNames() []string {
	return []string{FieldAccuracy, FieldAvgTime, FieldAttempts, FieldTopic}
}

func stringField(payload map[string]interface{}, field string) (string, error) {
	raw, ok := payload[field]
	if !ok {
		return "", &MissingFieldError{Field: field}
	}
	value, ok := raw.(string)
	if !ok {
		return "", &InvalidValueError{Field: field, Value: raw}
	}
	return value, nil
}

func floatField(payload map[string]interface{}, field string) (float64, error) {
	raw, ok := payload[field]
	if !ok {
		return 0, &MissingFieldError{Field: field}
	}
	switch value := raw.(type) {
	case float64:
		return value, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, &InvalidValueError{Field: field, Value: raw}
		}
		return parsed, nil
	default:
		return 0, &InvalidValueError{Field: field, Value: raw}
	}
}

// intField accepts JSON numbers (truncated) and base-10 integer strings.
func intField(payload map[string]interface{}, field string) (int, error) {
	raw, ok := payload[field]
	if !ok {
		return 0, &MissingFieldError{Field: field}
	}
	switch value := raw.(type) {
	case float64:
		return int(value), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, &InvalidValueError{Field: field, Value: raw}
		}
		return parsed, nil
	default:
		return 0, &InvalidValueError{Field: field, Value: raw}
	}
}
