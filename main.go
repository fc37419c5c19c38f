package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-collision-volumes/pkg/loaders"
	"github.com/df07/go-collision-volumes/pkg/mesh"
	"github.com/df07/go-collision-volumes/pkg/query"
)

func main() {
	// Parse command line flags
	sceneName := flag.String("scene", "falling-ball", "Scene name from scenes/ or path to a scene YAML file")
	workers := flag.Int("workers", 0, "Number of query workers (0 = one per CPU)")
	stlPath := flag.String("stl", "", "Write every volume of the scene to this STL file")
	cells := flag.Int("cells", mesh.DefaultCells, "Marching cubes resolution for -stl")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Collision Volumes")
		fmt.Println("Usage: collide [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		scenes, _ := loaders.ListScenes("scenes")
		for _, info := range scenes {
			fmt.Printf("  %s - %s\n", info.ID, info.Description)
		}
		return
	}

	scene, err := loadScene(*sceneName)
	if err != nil {
		fmt.Printf("Error loading scene: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded scene %q: %d volumes, %d queries\n", scene.Name, len(scene.Volumes), len(scene.Queries))

	runner := query.NewRunner(scene.Queries, *workers, log.Default())
	results, stats, err := runner.Run(context.Background())
	if err != nil {
		fmt.Printf("Error running queries: %v\n", err)
		os.Exit(1)
	}

	printResults(os.Stdout, results)
	fmt.Printf("%d queries, %d hits (%.0f%%), %d errors in %v\n",
		stats.Total, stats.Hits, 100*stats.HitRate(), stats.Errors, stats.Elapsed)

	if *stlPath != "" {
		triangles, err := exportSTL(scene, *stlPath, *cells)
		if err != nil {
			fmt.Printf("Error exporting STL: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d triangles to %s\n", triangles, *stlPath)
	}
}

// loadScene loads a scene by file path, or by name from the scenes directory
func loadScene(name string) (*loaders.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("no scene given")
	}

	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return loaders.LoadScene(name)
	}

	// Try different possible paths for scenes directory
	for _, dir := range []string{"scenes", "../scenes"} {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return loaders.LoadScene(path)
			}
		}
	}
	return nil, fmt.Errorf("unknown scene %q", name)
}

// printResults writes one line per result in the fields of its kind
func printResults(w io.Writer, results []query.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "%-24s %-8s ", r.Name, r.Kind)
		if r.Err != nil {
			fmt.Fprintf(w, "error: %v\n", r.Err)
			continue
		}

		switch r.Kind {
		case query.Sweep:
			if r.Hit {
				fmt.Fprintf(w, "hit at %.4f normal (%.3f, %.3f, %.3f)\n", r.Fraction, r.Normal.X(), r.Normal.Y(), r.Normal.Z())
			} else {
				fmt.Fprintln(w, "clear")
			}
		case query.Ray:
			if r.Hit {
				fmt.Fprintf(w, "hit at distance %.4f\n", r.Distance)
			} else {
				fmt.Fprintln(w, "miss")
			}
		case query.Cull:
			fmt.Fprintln(w, r.Containment)
		case query.Closest:
			fmt.Fprintf(w, "(%.4f, %.4f, %.4f) at distance %.4f\n", r.Point.X(), r.Point.Y(), r.Point.Z(), r.Distance)
		default:
			fmt.Fprintln(w, r.Hit)
		}
	}
}

// exportSTL tessellates every volume of the scene into one STL file and returns the triangle count
func exportSTL(scene *loaders.Scene, path string, cells int) (int, error) {
	meshes := make([]*mesh.Mesh, 0, len(scene.Volumes))
	triangles := 0
	for _, nv := range scene.Volumes {
		m, err := mesh.Tessellate(nv.Volume, cells)
		if err != nil {
			return 0, fmt.Errorf("volume %q: %w", nv.Name, err)
		}
		m.Name = nv.Name
		triangles += m.TriangleCount()
		meshes = append(meshes, m)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := mesh.SaveSTL(path, meshes...); err != nil {
		return 0, err
	}
	return triangles, nil
}
