package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// LabelEncoder maps categorical labels to integer codes. The vocabulary is
// closed: it is fixed at Fit (or Load) time and never grows afterwards.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{index: make(map[string]int)}
}

// Fit rebuilds the vocabulary from the given labels. Classes are deduplicated
// and sorted so the label-to-code assignment is stable across runs.
func (e *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.New("labels is empty")
	}
	seen := make(map[string]bool, len(labels))
	classes := make([]string, 0, len(labels))
	for _, label := range labels {
		if seen[label] {
			continue
		}
		seen[label] = true
		classes = append(classes, label)
	}
	sort.Strings(classes)

	e.classes = classes
	e.index = make(map[string]int, len(classes))
	for i, class := range classes {
		e.index[class] = i
	}
	return nil
}

// Transform returns the integer code for a label.
func (e *LabelEncoder) Transform(label string) (int, error) {
	code, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("label %q not in vocabulary", label)
	}
	return code, nil
}

// InverseTransform returns the label for an integer code.
func (e *LabelEncoder) InverseTransform(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("class id %d out of range [0, %d)", code, len(e.classes))
	}
	return e.classes[code], nil
}

// Classes returns a copy of the vocabulary in code order.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

func (e *LabelEncoder) Size() int {
	return len(e.classes)
}

func (e *LabelEncoder) Save(path string) error {
	if len(e.classes) == 0 {
		return errors.New("encoder not fitted")
	}
	payload, err := json.Marshal(e.classes)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (e *LabelEncoder) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var classes []string
	if err := json.Unmarshal(payload, &classes); err != nil {
		return err
	}
	if len(classes) == 0 {
		return errors.New("encoder vocabulary is empty")
	}
	e.classes = classes
	e.index = make(map[string]int, len(classes))
	for i, class := range classes {
		e.index[class] = i
	}
	return nil
}
