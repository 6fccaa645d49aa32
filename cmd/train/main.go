package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"studentlevel/db"
	"studentlevel/ml"
)

func main() {
	csvPath := flag.String("csv", "", "training data CSV (topic,accuracy_percent,avg_time_seconds,attempts,level)")
	dbPath := flag.String("db", "", "sqlite database of training samples; with -csv the file is imported first")
	outDir := flag.String("out", ".", "artifact output directory")
	maxDepth := flag.Int("max_depth", 6, "max tree depth")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out test ratio")
	gbk := flag.Bool("gbk", false, "CSV is GBK encoded")
	flag.Parse()

	if *csvPath == "" && *dbPath == "" {
		log.Fatal("either -csv or -db is required")
	}

	samples, err := loadSamples(*csvPath, *dbPath, *gbk)
	if err != nil {
		log.Fatalf("failed to load samples: %v", err)
	}
	if len(samples) < 2 {
		log.Fatalf("not enough samples to train: %d", len(samples))
	}
	log.Printf("loaded %d samples", len(samples))

	topics := ml.NewLabelEncoder()
	levels := ml.NewLabelEncoder()
	topicLabels := make([]string, len(samples))
	levelLabels := make([]string, len(samples))
	for i, sample := range samples {
		topicLabels[i] = sample.Topic
		levelLabels[i] = sample.Level
	}
	if err := topics.Fit(topicLabels); err != nil {
		log.Fatalf("failed to fit topic encoder: %v", err)
	}
	if err := levels.Fit(levelLabels); err != nil {
		log.Fatalf("failed to fit level encoder: %v", err)
	}

	features, labels, err := buildTrainingData(samples, topics, levels)
	if err != nil {
		log.Fatalf("failed to build training data: %v", err)
	}

	trainX, trainY, testX, testY := splitDataset(features, labels, *testRatio)

	model := &ml.DecisionTree{}
	if err := model.Train(trainX, trainY, *maxDepth); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	accuracy := evaluateModel(model, testX, testY)
	log.Printf("topics=%d levels=%d train=%d test=%d accuracy=%.2f",
		topics.Size(), levels.Size(), len(trainY), len(testY), accuracy)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create output dir: %v", err)
	}
	if err := model.Save(filepath.Join(*outDir, ml.ModelFile)); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	if err := topics.Save(filepath.Join(*outDir, ml.TopicEncoderFile)); err != nil {
		log.Fatalf("failed to save topic encoder: %v", err)
	}
	if err := levels.Save(filepath.Join(*outDir, ml.LevelEncoderFile)); err != nil {
		log.Fatalf("failed to save level encoder: %v", err)
	}

	fmt.Printf("artifacts written to %s\n", *outDir)
}

func loadSamples(csvPath, dbPath string, gbk bool) ([]db.Sample, error) {
	if dbPath != "" {
		if err := db.InitDB(dbPath); err != nil {
			return nil, err
		}
		defer db.Close()
	}

	if csvPath != "" {
		samples, err := readCSV(csvPath, gbk)
		if err != nil {
			return nil, err
		}
		if dbPath != "" {
			if err := db.SaveSamples(samples); err != nil {
				return nil, err
			}
			log.Printf("imported %d samples into %s", len(samples), dbPath)
		}
		return samples, nil
	}
	return db.QuerySamples()
}

// readCSV parses topic,accuracy_percent,avg_time_seconds,attempts,level rows.
// A header row is skipped when its accuracy column does not parse.
func readCSV(path string, gbk bool) ([]db.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var source io.Reader = file
	if gbk {
		source = transform.NewReader(file, simplifiedchinese.GBK.NewDecoder())
	}

	reader := csv.NewReader(source)
	reader.FieldsPerRecord = 5

	var samples []db.Sample
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		sample, err := parseRecord(record)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, sample)
	}
	if len(samples) == 0 {
		return nil, errors.New("no samples in CSV")
	}
	return samples, nil
}

func parseRecord(record []string) (db.Sample, error) {
	accuracy, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return db.Sample{}, fmt.Errorf("bad accuracy_percent %q", record[1])
	}
	avgTime, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return db.Sample{}, fmt.Errorf("bad avg_time_seconds %q", record[2])
	}
	attempts, err := strconv.Atoi(record[3])
	if err != nil {
		return db.Sample{}, fmt.Errorf("bad attempts %q", record[3])
	}
	return db.Sample{
		Topic:    record[0],
		Accuracy: accuracy,
		AvgTime:  avgTime,
		Attempts: attempts,
		Level:    record[4],
	}, nil
}

// buildTrainingData encodes samples into feature vectors in the serving
// order: accuracy, avg time, attempts, encoded topic.
func buildTrainingData(samples []db.Sample, topics, levels *ml.LabelEncoder) ([][]float64, []int, error) {
	features := make([][]float64, 0, len(samples))
	labels := make([]int, 0, len(samples))
	for _, sample := range samples {
		vector, err := ml.AssembleFeatures(ml.Request{
			Topic:    sample.Topic,
			Accuracy: sample.Accuracy,
			AvgTime:  sample.AvgTime,
			Attempts: sample.Attempts,
		}, topics)
		if err != nil {
			return nil, nil, err
		}
		label, err := levels.Transform(sample.Level)
		if err != nil {
			return nil, nil, err
		}
		features = append(features, vector)
		labels = append(labels, label)
	}
	return features, labels, nil
}

func splitDataset(features [][]float64, labels []int, testRatio float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func evaluateModel(model *ml.DecisionTree, testX [][]float64, testY []int) float64 {
	if len(testX) == 0 {
		return 0
	}
	var correct int
	for i, feature := range testX {
		label, _, err := model.Predict(feature)
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(testX))
}
