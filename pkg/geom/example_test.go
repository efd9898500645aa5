package geom_test

import (
	"fmt"

	"github.com/granulab/spherepack/pkg/geom"
)

func ExampleBox_Contains() {
	box, _ := geom.NewCube(10)

	fmt.Println(box.Contains(geom.Vec3{0, 0, 0}, 1))
	fmt.Println(box.Contains(geom.Vec3{4.9, 0, 0}, 1))
	// Output:
	// true
	// false
}

func ExampleFitCylinder() {
	// Size a cylinder so the spheres fill half of it.
	spheres := []geom.Sphere{{Radius: 1}, {Radius: 1}, {Radius: 2}}
	cyl, _ := geom.FitCylinder(geom.TotalVolume(spheres), 0.5)

	fmt.Printf("aspect ratio: %.0f\n", cyl.Height()/cyl.Radius())
	// Output:
	// aspect ratio: 8
}

func ExampleSphere_OverlapDepth() {
	a := geom.Sphere{Radius: 1, Center: geom.Vec3{0, 0, 0}}
	b := geom.Sphere{Radius: 1, Center: geom.Vec3{1.5, 0, 0}}

	fmt.Printf("%.1f\n", a.OverlapDepth(b))
	// Output:
	// 0.5
}
