package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Scene is one narration scene from the production script. Duration is
// preferred when set; otherwise StartSeconds/EndSeconds describe the
// scene's slot in the narration audio.
type Scene struct {
	ID                string        `json:"id"`
	NarrationExcerpt  string        `json:"narration_excerpt"`
	VisualDescription string        `json:"visual_description,omitempty"`
	SearchQuery       string        `json:"search_query,omitempty"`
	Duration          float64       `json:"duration,omitempty"`
	StartSeconds      float64       `json:"start_seconds,omitempty"`
	EndSeconds        float64       `json:"end_seconds,omitempty"`
	LibraryMatch      *LibraryMatch `json:"library_match,omitempty"`
}

// LibraryMatch records the footage clip chosen for a scene. Start and
// End are the tailored in/out points in seconds within the source video.
type LibraryMatch struct {
	VideoPath    string  `json:"video_path"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning,omitempty"`
}

// SceneDuration returns the target clip duration for the scene in
// seconds: the explicit duration when set, the start/end span otherwise.
func (s Scene) SceneDuration() float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	if s.EndSeconds > s.StartSeconds {
		return s.EndSeconds - s.StartSeconds
	}
	return 0
}

// Script is the on-disk document: an ordered list of scenes.
type Script struct {
	Title  string  `json:"title,omitempty"`
	Scenes []Scene `json:"scenes"`
}

// Load reads a script document from path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var doc Script
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if len(doc.Scenes) == 0 {
		return nil, errors.New("script contains no scenes")
	}
	for i := range doc.Scenes {
		if strings.TrimSpace(doc.Scenes[i].ID) == "" {
			doc.Scenes[i].ID = fmt.Sprintf("scene-%03d", i+1)
		}
	}
	return &doc, nil
}

// Save writes the script document to path with stable indentation.
func (d *Script) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}
