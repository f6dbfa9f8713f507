package physx

import (
	"math"

	"github.com/lumen-render/lumen/pkg/core"
	"github.com/lumen-render/lumen/pkg/geom"
	"github.com/lumen-render/lumen/pkg/spectrum"
	"github.com/lumen-render/lumen/pkg/tracer"
)

// DisableRussianRoulette as the start depth keeps every path alive until
// the recursion bound.
const DisableRussianRoulette = 0

// IntegratorConfig bounds the path-traced recursion
type IntegratorConfig struct {
	MaxDepth                  int     // maximum recursion depth
	RussianRouletteStartDepth int     // first depth eligible for termination; 0 disables
	MinContinueProbability    float64 // lower clamp on the continue probability
	MaxContinueProbability    float64 // upper clamp on the continue probability
	Epsilon                   float64 // self-intersection distance cutoff
}

// ProcessHitContext carries everything a hit processor may consume.
// The callee may allocate only from the arenas it is handed.
type ProcessHitContext struct {
	Hit           tracer.Hit
	WorldRay      geom.Ray
	Depth         int
	Lights        LightSampler
	Visibility    *VisibilityTester
	BsdfAllocator *BsdfAllocator
	Compositor    *spectrum.Compositor
	Reflectors    *spectrum.ReflectorCompositor
	Sampler       core.Sampler
	Integrator    *PathIntegrator
}

// ProcessHitFunc shades one hit, returning its radiance and blending
// alpha. The default implementation is the physically based shader; a
// replacement may implement any tone-map or debugging policy.
type ProcessHitFunc func(ctx *ProcessHitContext) (spectrum.Spectrum, float64, error)

// depthLevel is the per-depth working set. Every level owns its own ray
// tracer and arenas. The depth-0 exit clears the compositor, reflector
// and BSDF arenas; the ray tracer's arenas are not cleared there and are
// reset only when SetRay binds that tracer to its next ray.
type depthLevel struct {
	rayTracer     *tracer.RayTracer
	compositor    *spectrum.Compositor
	reflectors    *spectrum.ReflectorCompositor
	bsdfAllocator *BsdfAllocator
	oldThroughput spectrum.Color3
}

// PathIntegrator evaluates spectral radiance along camera rays with a
// recursion-bounded, Russian-roulette-terminated shading loop. One
// integrator serves one goroutine.
type PathIntegrator struct {
	scene      Scene
	lights     LightSampler
	visibility *VisibilityTester
	sampler    core.Sampler
	config     IntegratorConfig

	levels         []*depthLevel
	pathThroughput spectrum.Color3
	processHit     ProcessHitFunc

	logger  core.Logger
	Verbose bool
}

// NewPathIntegrator creates an integrator with its full depth stack of
// ray tracers, compositors and BSDF allocators pre-allocated.
func NewPathIntegrator(scene Scene, lights LightSampler, sampler core.Sampler, config IntegratorConfig, logger core.Logger) (*PathIntegrator, error) {
	if scene == nil || lights == nil || sampler == nil {
		return nil, core.ErrInvalidArgument
	}
	if config.MaxDepth < 0 || config.RussianRouletteStartDepth < 0 {
		return nil, core.ErrInvalidArgument
	}
	if !isFinite(config.MinContinueProbability) || !isFinite(config.MaxContinueProbability) ||
		config.MinContinueProbability < 0 || config.MinContinueProbability > 1 ||
		config.MaxContinueProbability < 0 || config.MaxContinueProbability > 1 ||
		config.MinContinueProbability > config.MaxContinueProbability {
		return nil, core.ErrInvalidArgument
	}
	if !isFinite(config.Epsilon) || config.Epsilon < 0 {
		return nil, core.ErrInvalidArgument
	}

	visibility, err := NewVisibilityTester(scene, config.Epsilon)
	if err != nil {
		return nil, err
	}

	levels := make([]*depthLevel, config.MaxDepth+1)
	for i := range levels {
		levels[i] = &depthLevel{
			rayTracer:     tracer.NewRayTracer(),
			compositor:    spectrum.NewCompositor(),
			reflectors:    spectrum.NewReflectorCompositor(),
			bsdfAllocator: NewBsdfAllocator(),
		}
	}

	integrator := &PathIntegrator{
		scene:          scene,
		lights:         lights,
		visibility:     visibility,
		sampler:        sampler,
		config:         config,
		levels:         levels,
		pathThroughput: spectrum.White(),
	}
	integrator.processHit = integrator.shadeHit
	integrator.logger = logger

	return integrator, nil
}

// SetProcessHit replaces the per-hit shading callback
func (pt *PathIntegrator) SetProcessHit(processHit ProcessHitFunc) {
	pt.processHit = processHit
}

// Integrate evaluates the radiance arriving along a world ray, scaled by
// the caller's transmittance. Every depth's compositor, reflector and
// BSDF arenas are cleared before it returns; the ray tracers' hit arenas
// are left as they are until their next SetRay.
func (pt *PathIntegrator) Integrate(ray geom.Ray, transmittance spectrum.Color3) (spectrum.Spectrum, error) {
	if err := ray.Validate(); err != nil {
		return nil, err
	}

	color, err := pt.integrate(ray, transmittance, 0)

	// The depth-0 exit clears every level's shading arenas
	for _, level := range pt.levels {
		level.compositor.Clear()
		level.reflectors.Clear()
		level.bsdfAllocator.Clear()
	}

	if err != nil {
		return nil, err
	}
	return spectrum.NewRGB(color), nil
}

func (pt *PathIntegrator) integrate(ray geom.Ray, transmittance spectrum.Color3, depth int) (spectrum.Color3, error) {
	level := pt.levels[depth]

	continueProbability := pt.pushPathThroughput(level, transmittance, depth)

	if continueProbability == 0 {
		pt.popPathThroughput(level, depth)
		return spectrum.Black(), nil
	}

	if continueProbability < 1 {
		if pt.sampler.Get1D() >= continueProbability {
			pt.logf("      pt[%d] roulette: terminated (p=%f)\n", depth, continueProbability)
			pt.popPathThroughput(level, depth)
			return spectrum.Black(), nil
		}
		pt.pathThroughput = pt.pathThroughput.DivideByScalar(continueProbability)
	}

	rayTracer := level.rayTracer
	if err := rayTracer.SetRay(ray, true); err != nil {
		pt.popPathThroughput(level, depth)
		return spectrum.Black(), err
	}

	if err := pt.scene.Trace(rayTracer); err != nil {
		pt.popPathThroughput(level, depth)
		return spectrum.Black(), err
	}

	rayTracer.Sort()

	accumulated := spectrum.Transparent()

	for accumulated.Alpha < 1 {
		hit, err := rayTracer.NextHit()
		if err == core.ErrNoMoreData {
			break
		}
		if err != nil {
			pt.popPathThroughput(level, depth)
			return spectrum.Black(), err
		}

		if hit.ShapeHit.Distance <= pt.config.Epsilon {
			continue
		}

		if shapeMaterial(hit.ShapeHit.Shape, hit.ShapeHit.Face) == nil &&
			shapeLight(hit.ShapeHit.Shape, hit.ShapeHit.Face) == nil {
			continue
		}

		context := ProcessHitContext{
			Hit:           hit,
			WorldRay:      rayTracer.Ray(),
			Depth:         depth,
			Lights:        pt.lights,
			Visibility:    pt.visibility,
			BsdfAllocator: level.bsdfAllocator,
			Compositor:    level.compositor,
			Reflectors:    level.reflectors,
			Sampler:       pt.sampler,
			Integrator:    pt,
		}

		hitSpectrum, alpha, err := pt.processHit(&context)
		if err != nil {
			pt.popPathThroughput(level, depth)
			return spectrum.Black(), err
		}

		hitColor := spectrum.Tristimulus(hitSpectrum).WithAlpha(alpha)
		accumulated = accumulated.Over(hitColor)
	}

	result := spectrum.Color3FromColor4(accumulated)

	if continueProbability < 1 {
		result = result.DivideByScalar(continueProbability)
	}

	result = result.ScaleByColor(transmittance)

	pt.popPathThroughput(level, depth)
	return result, nil
}

// pushPathThroughput folds the incoming transmittance into the running
// path throughput and returns the continuation probability for this
// depth.
func (pt *PathIntegrator) pushPathThroughput(level *depthLevel, transmittance spectrum.Color3, depth int) float64 {
	level.oldThroughput = pt.pathThroughput
	pt.pathThroughput = pt.pathThroughput.ScaleByColor(transmittance)

	if pt.config.RussianRouletteStartDepth == DisableRussianRoulette ||
		depth < pt.config.RussianRouletteStartDepth {
		return 1
	}

	probability := math.Min(pt.pathThroughput.AverageComponents(), pt.config.MaxContinueProbability)
	probability = math.Max(pt.config.MinContinueProbability, probability)

	if probability == 0 {
		pt.pathThroughput = spectrum.Black()
	}

	return probability
}

// popPathThroughput restores the throughput for the caller's depth; the
// depth-0 pop resets it for the next sample.
func (pt *PathIntegrator) popPathThroughput(level *depthLevel, depth int) {
	if depth == 0 {
		pt.pathThroughput = spectrum.White()
	} else {
		pt.pathThroughput = level.oldThroughput
	}
}

// shadeHit is the default hit processor: emissive plus MIS-weighted
// direct lighting plus the BSDF-sampled indirect bounce.
func (pt *PathIntegrator) shadeHit(ctx *ProcessHitContext) (spectrum.Spectrum, float64, error) {
	shapeHit := ctx.Hit.ShapeHit

	modelNormal, hasNormal := shapeNormal(shapeHit.Shape, ctx.Hit.ModelHitPoint, shapeHit.Face)
	material := shapeMaterial(shapeHit.Shape, shapeHit.Face)
	emitter := shapeLight(shapeHit.Shape, shapeHit.Face)

	alpha := 1.0
	if translucent, ok := material.(Translucent); ok {
		alpha = math.Max(0, math.Min(1, translucent.Translucency()))
	}

	var total spectrum.Spectrum

	// Emission from the surface itself
	if emitter != nil {
		toHit := ctx.Hit.WorldHitPoint.Subtract(ctx.WorldRay.Origin)
		emitted, err := emitter.ComputeEmissive(geom.NewRay(ctx.WorldRay.Origin, toHit), ctx.Visibility, ctx.Compositor)
		if err != nil {
			return nil, 0, err
		}
		total = ctx.Compositor.Add(total, emitted)
		if emitted != nil {
			pt.logf("      pt[%d]    light: emissive hit\n", ctx.Depth)
		}
	}

	if material == nil || !hasNormal {
		return total, alpha, nil
	}

	bsdf, err := material.Sample(ctx.Hit.ModelHitPoint, shapeHit.AdditionalData, geom.Vec2{}, ctx.BsdfAllocator, ctx.Reflectors)
	if err != nil {
		return nil, 0, err
	}

	worldNormal := ctx.Hit.ModelToWorld.TransformNormal(modelNormal).Normalize()
	incoming := ctx.WorldRay.Direction

	// Shade the side of the surface the ray arrived on
	if incoming.Dot(worldNormal) > 0 {
		worldNormal = worldNormal.Negate()
	}

	sample, err := bsdf.Sample(incoming, worldNormal, ctx.Sampler, ctx.Reflectors)
	if err != nil {
		return nil, 0, err
	}

	direct, err := pt.sampleDirectLighting(ctx, bsdf, incoming, worldNormal)
	if err != nil {
		return nil, 0, err
	}
	total = ctx.Compositor.Add(total, direct)

	indirect, err := pt.sampleIndirectLighting(ctx, sample, worldNormal)
	if err != nil {
		return nil, 0, err
	}
	total = ctx.Compositor.Add(total, indirect)

	return total, alpha, nil
}

// sampleDirectLighting iterates the light sampler at the shading point,
// weighting each candidate with the balance heuristic when both the
// light and the BSDF could have produced the direction.
func (pt *PathIntegrator) sampleDirectLighting(ctx *ProcessHitContext, bsdf Bsdf, incoming, normal geom.Vector) (spectrum.Spectrum, error) {
	if err := ctx.Lights.PrepareSamples(ctx.Hit.WorldHitPoint); err != nil {
		return nil, err
	}

	var direct spectrum.Spectrum

	for {
		light, selectionPdf, err := ctx.Lights.NextSample()
		if err == core.ErrNoMoreData {
			return direct, nil
		}
		if err != nil {
			return nil, err
		}
		if selectionPdf <= 0 {
			continue
		}

		lightSample, err := light.Sample(ctx.Hit.WorldHitPoint, ctx.Visibility, ctx.Sampler, ctx.Compositor)
		if err != nil {
			return nil, err
		}
		if lightSample.Spectrum == nil || lightSample.Pdf <= 0 {
			continue
		}

		cosine := lightSample.ToLight.Dot(normal)
		if cosine <= 0 {
			continue
		}

		reflector, bsdfPdf, err := bsdf.ComputeReflectanceWithPdf(incoming, lightSample.ToLight, normal, ctx.Reflectors)
		if err != nil {
			return nil, err
		}
		if reflector == nil {
			continue
		}

		var scale float64
		if math.IsInf(lightSample.Pdf, 1) {
			// Delta light: no competing strategy, no MIS
			scale = cosine / selectionPdf
		} else {
			misWeight := BalanceHeuristic(1, lightSample.Pdf, 1, bsdfPdf)
			scale = cosine * misWeight / (selectionPdf * lightSample.Pdf)
		}

		contribution := ctx.Compositor.AttenuatedAddReflection(lightSample.Spectrum, reflector, scale)
		direct = ctx.Compositor.Add(direct, contribution)

		pt.logf("      pt[%d]   direct: cosine=%f scale=%f\n", ctx.Depth, cosine, scale)
	}
}

// sampleIndirectLighting recurses along the BSDF-sampled direction with
// the attenuated path throughput.
func (pt *PathIntegrator) sampleIndirectLighting(ctx *ProcessHitContext, sample BsdfSample, normal geom.Vector) (spectrum.Spectrum, error) {
	if ctx.Depth == pt.config.MaxDepth {
		return nil, nil
	}
	if sample.Reflector == nil {
		return nil, nil
	}
	if !sample.IsDelta() && sample.Pdf <= 0 {
		return nil, nil
	}

	scale := 1.0
	if !sample.IsDelta() {
		scale = sample.Outgoing.AbsDot(normal) / sample.Pdf
	}

	transmittance := spectrum.ReflectorTristimulus(sample.Reflector).ScaleByScalar(scale)
	if transmittance.IsBlack() {
		return nil, nil
	}

	bounceRay := geom.NewRay(ctx.Hit.WorldHitPoint, sample.Outgoing)
	color, err := pt.integrate(bounceRay, transmittance, ctx.Depth+1)
	if err != nil {
		return nil, err
	}

	pt.logf("      pt[%d] indirect: contribution=%v\n", ctx.Depth, color)

	if color.IsBlack() {
		return nil, nil
	}
	return spectrum.NewRGB(color), nil
}

func (pt *PathIntegrator) logf(format string, args ...interface{}) {
	if pt.Verbose && pt.logger != nil {
		pt.logger.Printf(format, args...)
	}
}
