package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type ObjectMeta struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Points int    `json:"points"`
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Scene        string             `json:"scene"`
	Timestamp    time.Time          `json:"timestamp"`
	Dt           float64            `json:"dt"`
	Steps        uint64             `json:"steps"`
	Objects      []ObjectMeta       `json:"objects"`
	Interactions int                `json:"interactions"`
	Error        string             `json:"error,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Frame is the positions of every recorded object at one step.
type Frame struct {
	Step      uint64
	Time      float64
	Positions map[string][]mgl64.Vec3
}

// Recording collects sampled frames of a run.
type Recording struct {
	Frames []Frame
}

// Add appends a frame, copying the positions.
func (r *Recording) Add(step uint64, t float64, positions map[string][]mgl64.Vec3) {
	f := Frame{Step: step, Time: t, Positions: make(map[string][]mgl64.Vec3, len(positions))}
	for name, pts := range positions {
		f.Positions[name] = append([]mgl64.Vec3(nil), pts...)
	}
	r.Frames = append(r.Frames, f)
}

// Series returns one value per frame for object name, computed by fn.
// Frames without the object are skipped.
func (r *Recording) Series(name string, fn func([]mgl64.Vec3) float64) []float64 {
	out := make([]float64, 0, len(r.Frames))
	for _, f := range r.Frames {
		if pts, ok := f.Positions[name]; ok {
			out = append(out, fn(pts))
		}
	}
	return out
}

// Save writes metadata.json and frames.csv into a new run directory and
// returns the run id.
func (s *Store) Save(meta RunMetadata, rec *Recording) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Scene, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "frames.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"step", "time", "object", "point", "x", "y", "z"}); err != nil {
		return "", err
	}

	if rec != nil {
		for _, f := range rec.Frames {
			names := make([]string, 0, len(f.Positions))
			for n := range f.Positions {
				names = append(names, n)
			}
			sort.Strings(names)

			for _, name := range names {
				for i, p := range f.Positions[name] {
					row := []string{
						strconv.FormatUint(f.Step, 10),
						strconv.FormatFloat(f.Time, 'f', 6, 64),
						name,
						strconv.Itoa(i),
						strconv.FormatFloat(p[0], 'f', 6, 64),
						strconv.FormatFloat(p[1], 'f', 6, 64),
						strconv.FormatFloat(p[2], 'f', 6, 64),
					}
					if err := w.Write(row); err != nil {
						return "", err
					}
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads frames.csv back into a Recording.
func (s *Store) LoadFrames(runID string) (*Recording, error) {
	csvPath := filepath.Join(s.baseDir, runID, "frames.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 7

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rec := &Recording{}
	for i := 1; i < len(records); i++ {
		row := records[i]
		step, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		t, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		var p mgl64.Vec3
		for k := 0; k < 3; k++ {
			if p[k], err = strconv.ParseFloat(row[4+k], 64); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}

		n := len(rec.Frames)
		if n == 0 || rec.Frames[n-1].Step != step {
			rec.Frames = append(rec.Frames, Frame{Step: step, Time: t, Positions: make(map[string][]mgl64.Vec3)})
			n++
		}
		f := &rec.Frames[n-1]
		f.Positions[row[2]] = append(f.Positions[row[2]], p)
	}
	return rec, nil
}
