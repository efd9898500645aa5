package packing_test

import (
	"context"
	"fmt"

	"github.com/granulab/spherepack/pkg/geom"
	"github.com/granulab/spherepack/pkg/mixture"
	"github.com/granulab/spherepack/pkg/packing"
)

func ExampleGenerate() {
	// Pack 100 unit spheres into a cube of side 10 and settle them.
	cube, _ := geom.NewCube(10)
	mix := mixture.Mixture{{Name: "beads", Radius: 1, Proportion: 1}}
	cfg := packing.Config{Count: 100}

	p, err := packing.Generate(context.Background(), cfg, cube, mix)
	if err != nil {
		fmt.Println("generate:", err)
		return
	}
	if err := packing.Relax(context.Background(), cfg, p); err != nil {
		fmt.Println("relax:", err)
		return
	}

	fmt.Println("spheres:", p.Len())
	fmt.Println("converged:", p.Converged)
	// Output:
	// spheres: 100
	// converged: true
}

func ExampleMeasure() {
	// A single unit sphere centered in a cube of side 2 fills pi/6.
	cube, _ := geom.NewCube(2)
	p := packing.New(cube, []geom.Sphere{{Radius: 1}})
	p.Converged = true

	res, _ := packing.Measure(p)
	fmt.Printf("volume fraction: %.4f\n", res.VolumeFraction)
	fmt.Printf("surface to volume: %.0f\n", res.SurfaceToVolumeRatio)
	// Output:
	// volume fraction: 0.5236
	// surface to volume: 3
}

func ExampleConfig_WithDefaults() {
	cfg := packing.Config{Count: 50}.WithDefaults()
	fmt.Println("alpha:", cfg.Alpha)
	fmt.Println("max passes:", cfg.MaxPasses)
	fmt.Println("seed:", cfg.Seed)
	// Output:
	// alpha: 0.4
	// max passes: 20000
	// seed: 42
}
