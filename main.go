package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/matrix"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/render"
	"github.com/lumen-render/lumen/pkg/shapes"
	"github.com/lumen-render/lumen/pkg/spectrum"
	"github.com/lumen-render/lumen/pkg/toolkit"
)

func main() {
	configPath := flag.String("config", "", "YAML render configuration")
	output := flag.String("output", "render.png", "output PNG path")
	width := flag.Int("width", 0, "override image width")
	height := flag.Int("height", 0, "override image height")
	samples := flag.Int("samples", 0, "override samples per pixel")
	flag.Parse()

	config := render.DefaultConfig()
	if *configPath != "" {
		loaded, err := render.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		config = loaded
	}
	if *width > 0 {
		config.Width = *width
	}
	if *height > 0 {
		config.Height = *height
	}
	if *samples > 0 {
		config.SamplesPerPixel = *samples
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	scene, lights, err := buildDemoScene()
	if err != nil {
		log.Fatalf("Error building scene: %v", err)
	}

	aspect := float64(config.Width) / float64(config.Height)
	camera := render.NewCamera(
		geom.NewPoint(0, 1.5, 4),
		geom.NewPoint(0, 0.5, 0),
		geom.NewVector(0, 1, 0),
		40, aspect,
	)

	lightList := func(sampler core.Sampler) physx.LightSampler {
		return physx.NewAllLightSampler(lights)
	}

	renderer, err := render.NewRenderer(scene, lightList, camera, config, log.Default())
	if err != nil {
		log.Fatalf("Error creating renderer: %v", err)
	}

	fmt.Printf("Rendering %dx%d at %d spp...\n", config.Width, config.Height, config.SamplesPerPixel)

	img, err := renderer.Render()
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	if err := render.WritePNG(img, *output); err != nil {
		log.Fatalf("Error writing image: %v", err)
	}

	fmt.Printf("Wrote %s\n", *output)
	os.Exit(0)
}

// buildDemoScene assembles a small scene exercising untransformed,
// transformed, and emissive shapes along with area and point lights
func buildDemoScene() (physx.Scene, []physx.Light, error) {
	gray := toolkit.NewLambertianMaterial(spectrum.Color3{R: 0.6, G: 0.6, B: 0.6})
	red := toolkit.NewLambertianMaterial(spectrum.Color3{R: 0.75, G: 0.2, B: 0.2})
	blue := toolkit.NewLambertianMaterial(spectrum.Color3{R: 0.2, G: 0.3, B: 0.8})
	green := toolkit.NewLambertianMaterial(spectrum.Color3{R: 0.25, G: 0.7, B: 0.25})

	ground := shapes.NewPlane(geom.NewPoint(0, 0, 0), geom.NewVector(0, 1, 0)).
		AttachMaterial(0, gray).
		AttachMaterial(1, gray)

	centerSphere := shapes.NewSphere(geom.NewPoint(0, 0.5, 0), 0.5).
		AttachMaterial(0, red).
		AttachMaterial(1, red)

	// The left sphere is a unit sphere placed by a transform
	leftTransform, err := buildLeftTransform()
	if err != nil {
		return nil, nil, err
	}
	leftSphere := shapes.NewSphere(geom.NewPoint(0, 0, 0), 1).
		AttachMaterial(0, blue).
		AttachMaterial(1, blue)

	prism := shapes.NewTriangle(
		geom.NewPoint(0.8, 0, -0.6),
		geom.NewPoint(1.6, 0, -0.6),
		geom.NewPoint(1.2, 0.9, -0.8),
	).AttachMaterial(0, green).AttachMaterial(1, green)

	// Overhead quad light with matching emissive geometry; U cross V
	// points down so the quad emits toward the floor
	quadCorner := geom.NewPoint(-0.5, 2.5, -0.5)
	quadU := geom.NewVector(1, 0, 0)
	quadV := geom.NewVector(0, 0, 1)
	quadLight := toolkit.NewAreaQuadLight(quadCorner, quadU, quadV, spectrum.Color3{R: 10, G: 10, B: 9})

	lightTriangleA := shapes.NewTriangle(
		quadCorner,
		quadCorner.Add(quadU),
		quadCorner.Add(quadU).Add(quadV),
	)
	lightTriangleB := shapes.NewTriangle(
		quadCorner,
		quadCorner.Add(quadU).Add(quadV),
		quadCorner.Add(quadV),
	)
	lightTriangleA.AttachLight(0, quadLight).AttachLight(1, quadLight)
	lightTriangleB.AttachLight(0, quadLight).AttachLight(1, quadLight)

	pointLight := toolkit.NewPointLight(geom.NewPoint(3, 3, 2), spectrum.Color3{R: 12, G: 12, B: 12})

	scene := physx.NewListScene(nil)
	scene.Add(ground, nil, false)
	scene.Add(centerSphere, nil, false)
	scene.Add(leftSphere, leftTransform, false)
	scene.Add(prism, nil, false)
	scene.Add(lightTriangleA, nil, false)
	scene.Add(lightTriangleB, nil, false)

	lights := []physx.Light{quadLight, pointLight}
	return scene, lights, nil
}

// buildLeftTransform scales a unit sphere down and moves it left of the
// origin
func buildLeftTransform() (*matrix.Matrix, error) {
	translate, err := matrix.Translation(-1.4, 0.45, -0.3)
	if err != nil {
		return nil, err
	}
	scale, err := matrix.Scalar(0.45, 0.45, 0.45)
	if err != nil {
		return nil, err
	}
	return matrix.Multiply(translate, scale), nil
}
