package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/export"
	"github.com/san-kum/softsim/internal/storage"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tDT\tOBJECTS\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			len(run.Objects),
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rec, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(rec.Frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n", len(rec.Frames))
	if meta.Error != "" {
		fmt.Printf("error: %s\n", meta.Error)
	}
	fmt.Println()

	lowest := func(pts []mgl64.Vec3) float64 { return dynamo.Points(pts).Min(2) }
	for _, obj := range meta.Objects {
		data := rec.Series(obj.Name, lowest)
		if len(data) < 2 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s lowest z (%s)", obj.Name, obj.Kind)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgPath != "" {
		svg := export.TrajectoriesToSVG(export.CentroidPaths(rec), 800, 600)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	return storage.New(dataDir).ExportJSON(args[0], path)
}
