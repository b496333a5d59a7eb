package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Frames int `json:"frames"`
}

// ExportJSON writes the run's metadata and frame count to path, or to
// stdout when path is empty or "-".
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rec, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	data := ExportData{RunMetadata: *meta, Frames: len(rec.Frames)}

	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
