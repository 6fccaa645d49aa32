package ml

import (
	"errors"
	"testing"
)

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"topic":            "algebra",
		"accuracy_percent": 85.0,
		"avg_time_seconds": 12.5,
		"attempts":         2.0,
	}
}

func TestParseRequestValid(t *testing.T) {
	req, err := ParseRequest(validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Topic != "algebra" || req.Accuracy != 85 || req.AvgTime != 12.5 || req.Attempts != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestNumericStrings(t *testing.T) {
	payload := map[string]interface{}{
		"topic":            "algebra",
		"accuracy_percent": "85.5",
		"avg_time_seconds": " 12.5 ",
		"attempts":         "3",
	}
	req, err := ParseRequest(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Accuracy != 85.5 || req.AvgTime != 12.5 || req.Attempts != 3 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestTruncatesFractionalAttempts(t *testing.T) {
	payload := validPayload()
	payload["attempts"] = 2.9
	req, err := ParseRequest(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Attempts != 2 {
		t.Fatalf("expected attempts 2, got %d", req.Attempts)
	}
}

func TestParseRequestMissingFields(t *testing.T) {
	for _, field := range []string{FieldTopic, FieldAccuracy, FieldAvgTime, FieldAttempts} {
		payload := validPayload()
		delete(payload, field)

		_, err := ParseRequest(payload)
		if err == nil {
			t.Fatalf("expected error for missing %q", field)
		}
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("expected MissingFieldError for %q, got %T", field, err)
		}
		if missing.Field != field {
			t.Fatalf("expected field %q in error, got %q", field, missing.Field)
		}
	}
}

func TestParseRequestInvalidValues(t *testing.T) {
	cases := []struct {
		field string
		value interface{}
	}{
		{FieldTopic, 42.0},
		{FieldAccuracy, "not-a-number"},
		{FieldAccuracy, true},
		{FieldAvgTime, "slow"},
		{FieldAttempts, "2.5"},
		{FieldAttempts, []interface{}{1.0}},
	}
	for _, tc := range cases {
		payload := validPayload()
		payload[tc.field] = tc.value

		_, err := ParseRequest(payload)
		if err == nil {
			t.Fatalf("expected error for %s=%v", tc.field, tc.value)
		}
		var invalid *InvalidValueError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidValueError for %s=%v, got %T", tc.field, tc.value, err)
		}
		if invalid.Field != tc.field {
			t.Fatalf("expected field %q in error, got %q", tc.field, invalid.Field)
		}
	}
}

func TestAssembleFeaturesOrder(t *testing.T) {
	topics := NewLabelEncoder()
	if err := topics.Fit([]string{"algebra", "geometry"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vector, err := AssembleFeatures(Request{
		Topic:    "geometry",
		Accuracy: 85,
		AvgTime:  12.5,
		Attempts: 2,
	}, topics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{85, 12.5, 2, 1}
	if len(vector) != len(want) {
		t.Fatalf("expected %d features, got %d", len(want), len(vector))
	}
	for i := range want {
		if vector[i] != want[i] {
			t.Fatalf("expected %v at index %d, got %v", want[i], i, vector[i])
		}
	}
}

func TestAssembleFeaturesUnknownTopic(t *testing.T) {
	topics := NewLabelEncoder()
	if err := topics.Fit([]string{"algebra"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := AssembleFeatures(Request{Topic: "quantum_foo"}, topics)
	if err == nil {
		t.Fatal("expected error for unknown topic")
	}
	var unknown *UnknownTopicError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTopicError, got %T", err)
	}
	if unknown.Topic != "quantum_foo" {
		t.Fatalf("unexpected topic in error: %q", unknown.Topic)
	}
}
