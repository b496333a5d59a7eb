package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func testRecording() *Recording {
	rec := &Recording{}
	rec.Add(0, 0, map[string][]mgl64.Vec3{
		"floor": {{-1, -1, 0}, {1, -1, 0}},
		"tet":   {{0, 0, 0.5}},
	})
	rec.Add(10, 0.1, map[string][]mgl64.Vec3{
		"floor": {{-1, -1, 0}, {1, -1, 0}},
		"tet":   {{0, 0, 0.45}},
	})
	return rec
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Scene:   "drop",
		Dt:      0.01,
		Steps:   10,
		Objects: []ObjectMeta{{Name: "floor", Kind: "immovable", Points: 2}, {Name: "tet", Kind: "deformable", Points: 1}},
		Metrics: map[string]float64{"clearance": 0.45},
	}
	runID, err := st.Save(meta, testRecording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Scene != "drop" {
		t.Errorf("expected scene 'drop', got '%s'", loaded.Scene)
	}
	if len(loaded.Objects) != 2 {
		t.Errorf("expected 2 objects, got %d", len(loaded.Objects))
	}
	if loaded.Metrics["clearance"] != 0.45 {
		t.Errorf("expected clearance 0.45, got %f", loaded.Metrics["clearance"])
	}

	rec, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(rec.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(rec.Frames))
	}
	if rec.Frames[1].Step != 10 {
		t.Errorf("expected step 10, got %d", rec.Frames[1].Step)
	}
	if got := rec.Frames[1].Positions["tet"][0].Z(); got != 0.45 {
		t.Errorf("expected tet z 0.45, got %f", got)
	}
	if len(rec.Frames[0].Positions["floor"]) != 2 {
		t.Errorf("expected 2 floor points, got %d", len(rec.Frames[0].Positions["floor"]))
	}
}

func TestList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	for _, scene := range []string{"a", "b"} {
		if _, err := st.Save(RunMetadata{Scene: scene}, nil); err != nil {
			t.Fatal(err)
		}
	}
	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestSeries(t *testing.T) {
	rec := testRecording()
	z := rec.Series("tet", func(p []mgl64.Vec3) float64 { return p[0].Z() })
	if len(z) != 2 || z[0] != 0.5 || z[1] != 0.45 {
		t.Errorf("unexpected series %v", z)
	}
	if len(rec.Series("ghost", func([]mgl64.Vec3) float64 { return 0 })) != 0 {
		t.Error("expected empty series for unknown object")
	}
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	st := New(filepath.Join(dir, "runs"))
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save(RunMetadata{Scene: "drop", Steps: 10}, testRecording())
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "export.json")
	if err := st.ExportJSON(runID, out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got ExportData
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != runID || got.Frames != 2 || got.Steps != 10 {
		t.Errorf("unexpected export %+v", got)
	}
}
