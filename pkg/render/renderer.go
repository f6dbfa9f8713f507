package render

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/physx"
	"github.com/lumen-render/lumen/pkg/spectrum"
)

// ToneMap converts accumulated linear radiance to display values.
// The default clamps and applies the configured gamma.
type ToneMap func(color spectrum.Color3) spectrum.Color3

// tileTask is one rectangle of the image assigned to a worker
type tileTask struct {
	x0, y0, x1, y1 int
}

// LightListFunc builds the light sampler for one rendering worker. Each
// worker needs its own since samplers are stateful.
type LightListFunc func(sampler core.Sampler) physx.LightSampler

// Renderer renders a scene to an RGBA image by fanning tiles out over a
// pool of workers, each owning a full integrator depth stack.
type Renderer struct {
	scene   physx.Scene
	lights  LightListFunc
	camera  *Camera
	config  Config
	toneMap ToneMap
	logger  core.Logger
}

// NewRenderer creates a renderer over a scene and camera
func NewRenderer(scene physx.Scene, lights LightListFunc, camera *Camera, config Config, logger core.Logger) (*Renderer, error) {
	if scene == nil || lights == nil || camera == nil {
		return nil, core.ErrInvalidArgument
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	renderer := &Renderer{
		scene:  scene,
		lights: lights,
		camera: camera,
		config: config,
		logger: logger,
	}
	renderer.toneMap = renderer.defaultToneMap
	return renderer, nil
}

// SetToneMap replaces the output conversion
func (r *Renderer) SetToneMap(toneMap ToneMap) {
	r.toneMap = toneMap
}

// Render traces every pixel and returns the finished image. Each worker
// goroutine owns its integrator, sampler, and light sampler; per-sample
// errors surface as the render error.
func (r *Renderer) Render() (*image.RGBA, error) {
	width, height := r.config.Width, r.config.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	tasks := make(chan tileTask, r.tileCount())
	for y := 0; y < height; y += r.config.TileSize {
		for x := 0; x < width; x += r.config.TileSize {
			tasks <- tileTask{
				x0: x,
				y0: y,
				x1: min(x+r.config.TileSize, width),
				y1: min(y+r.config.TileSize, height),
			}
		}
	}
	close(tasks)

	workers := r.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for workerID := 0; workerID < workers; workerID++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			if err := r.renderWorker(workerID, tasks, img); err != nil {
				errs <- err
			}
		}(workerID)
	}

	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	return img, nil
}

// renderWorker drains tiles from the queue with a worker-local
// integrator
func (r *Renderer) renderWorker(workerID int, tasks <-chan tileTask, img *image.RGBA) error {
	sampler := core.NewRandomSampler(r.config.Seed + int64(workerID))

	integrator, err := physx.NewPathIntegrator(r.scene, r.lights(sampler), sampler, r.config.IntegratorConfig(), r.logger)
	if err != nil {
		return err
	}

	for task := range tasks {
		if err := r.renderTile(integrator, sampler, task, img); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderTile(integrator *physx.PathIntegrator, sampler core.Sampler, task tileTask, img *image.RGBA) error {
	width := float64(r.config.Width)
	height := float64(r.config.Height)
	samples := r.config.SamplesPerPixel

	for y := task.y0; y < task.y1; y++ {
		for x := task.x0; x < task.x1; x++ {
			accumulated := spectrum.Black()

			for sample := 0; sample < samples; sample++ {
				du, dv := sampler.Get2D()
				s := (float64(x) + du) / width
				t := 1 - (float64(y)+dv)/height

				radiance, err := integrator.Integrate(r.camera.GetRay(s, t), spectrum.White())
				if err != nil {
					return errors.Wrapf(err, "pixel (%d, %d)", x, y)
				}

				accumulated = accumulated.Add(spectrum.Tristimulus(radiance))
			}

			img.Set(x, y, r.toRGBA(accumulated.DivideByScalar(float64(samples))))
		}
	}
	return nil
}

func (r *Renderer) toRGBA(linear spectrum.Color3) color.RGBA {
	mapped := r.toneMap(linear)
	return color.RGBA{
		R: uint8(255 * mapped.R),
		G: uint8(255 * mapped.G),
		B: uint8(255 * mapped.B),
		A: 255,
	}
}

func (r *Renderer) defaultToneMap(linear spectrum.Color3) spectrum.Color3 {
	invGamma := 1 / r.config.Gamma
	return spectrum.Color3{
		R: math.Pow(clamp01(linear.R), invGamma),
		G: math.Pow(clamp01(linear.G), invGamma),
		B: math.Pow(clamp01(linear.B), invGamma),
	}
}

func (r *Renderer) tileCount() int {
	tilesX := (r.config.Width + r.config.TileSize - 1) / r.config.TileSize
	tilesY := (r.config.Height + r.config.TileSize - 1) / r.config.TileSize
	return tilesX * tilesY
}

// WritePNG writes an image to disk
func WritePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	return nil
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
