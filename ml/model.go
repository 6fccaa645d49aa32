package ml

// Classifier is a trained model mapping a feature vector to a class id.
// Implementations must be safe for concurrent use once loaded.
type Classifier interface {
	Predict(features []float64) (label int, confidence float64, err error)
}
