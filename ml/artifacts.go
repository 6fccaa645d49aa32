package ml

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Default artifact file names, resolved against the working directory.
const (
	ModelFile        = "coa_model.json"
	TopicEncoderFile = "topic_encoder.json"
	LevelEncoderFile = "level_encoder.json"
)

// ArtifactPaths locates the three trained artifacts on disk.
type ArtifactPaths struct {
	Model        string
	TopicEncoder string
	LevelEncoder string
}

func DefaultArtifactPaths() ArtifactPaths {
	return ArtifactPaths{
		Model:        ModelFile,
		TopicEncoder: TopicEncoderFile,
		LevelEncoder: LevelEncoderFile,
	}
}

// ArtifactSet is the trio of trained artifacts the service depends on.
// It is loaded exactly once at startup and treated as immutable afterwards;
// concurrent requests share it read-only.
type ArtifactSet struct {
	Model  Classifier
	Topics *LabelEncoder
	Levels *LabelEncoder
}

// LoadArtifacts deserializes all three artifacts. Any missing or corrupt
// file fails the load as a whole; the caller must not serve traffic on a
// partial set.
func LoadArtifacts(paths ArtifactPaths) (*ArtifactSet, error) {
	model, err := LoadModel("decision_tree", paths.Model)
	if err != nil {
		return nil, fmt.Errorf("load classifier %s: %w", paths.Model, err)
	}

	topics := NewLabelEncoder()
	if err := topics.Load(paths.TopicEncoder); err != nil {
		return nil, fmt.Errorf("load topic encoder %s: %w", paths.TopicEncoder, err)
	}

	levels := NewLabelEncoder()
	if err := levels.Load(paths.LevelEncoder); err != nil {
		return nil, fmt.Errorf("load level encoder %s: %w", paths.LevelEncoder, err)
	}

	return &ArtifactSet{Model: model, Topics: topics, Levels: levels}, nil
}

// WatchArtifacts logs a warning whenever an artifact file changes on disk.
// Artifacts are never reloaded while the process runs; the warning tells the
// operator a restart is needed to pick up the new files. The caller owns the
// returned watcher and closes it on shutdown.
func WatchArtifacts(paths ArtifactPaths, log *zap.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, path := range []string{paths.Model, paths.TopicEncoder, paths.LevelEncoder} {
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Warn("artifact changed on disk, restart required to pick it up",
						zap.String("file", event.Name),
						zap.String("op", event.Op.String()))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("artifact watcher error", zap.Error(err))
			}
		}
	}()
	return watcher, nil
}
