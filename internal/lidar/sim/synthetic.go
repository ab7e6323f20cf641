package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/parse"
	"github.com/banshee-data/simlidar/internal/monitoring"
)

// Class tags emitted by the synthetic scene.
const (
	tagRoads     = 1
	tagSidewalks = 2
	tagBuildings = 3
	tagTerrain   = 10
	tagCar       = 14
	tagGround    = 25
)

// VehicleBlueprints is the vehicle catalogue SpawnVehicle filters against.
var VehicleBlueprints = []string{
	"vehicle.audi.tt",
	"vehicle.lincoln.mkz_2020",
	"vehicle.mercedes.coupe",
	"vehicle.nissan.patrol",
	"vehicle.tesla.model3",
	"vehicle.toyota.prius",
}

// SyntheticConfig controls the generated scene: a circular road with traffic
// driving around it, enclosed by a ring of buildings.
type SyntheticConfig struct {
	Seed          uint64
	Actors        int     // traffic vehicles besides the ego vehicle
	TrackRadius   float64 // metres, radius of the road centreline
	TrackSpeedMPS float64 // metres per second for traffic
	EgoSpeedMPS   float64 // metres per second for the ego vehicle on autopilot
	ActorRadius   float64 // metres, vehicle footprint radius
	ActorHeight   float64 // metres
	WallRadius    float64 // metres, radius of the building ring
	WallHeight    float64 // metres
	MaxPoints     int     // cap on samples per frame, 0 for no cap
}

// DefaultSyntheticConfig returns a small town block.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Seed:          1,
		Actors:        6,
		TrackRadius:   12.0,
		TrackSpeedMPS: 5.0,
		EgoSpeedMPS:   3.0,
		ActorRadius:   1.0,
		ActorHeight:   1.6,
		WallRadius:    28.0,
		WallHeight:    8.0,
	}
}

// Synthetic is an in-process World. Sensors produce frames in both payload
// layouts from a ray-cast of the generated scene on every Tick.
type Synthetic struct {
	cfg SyntheticConfig

	mu       sync.Mutex
	settings Settings
	tmSync   bool
	nextID   uint32
	frame    uint64
	elapsed  float64
	actors   map[uint32]*synthActor
	sensors  map[uint32]*synthSensor
	spawns   []Transform
	rng      *rand.Rand
}

type synthActor struct {
	world     *Synthetic
	id        uint32
	typeID    string
	transform Transform
	autopilot bool
	lane      int // traffic slot, -1 for spawned vehicles
}

type synthSensor struct {
	synthActor
	bp      SensorBlueprint
	kind    lidar.SensorKind
	parent  uint32
	azimuth float64 // degrees, where the next frame starts
	fn      func([]byte)
}

// NewSynthetic creates a world populated with cfg.Actors traffic vehicles.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	w := &Synthetic{
		cfg:      cfg,
		actors:   make(map[uint32]*synthActor),
		sensors:  make(map[uint32]*synthSensor),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
	for i := 0; i < cfg.Actors; i++ {
		a := w.newActor(VehicleBlueprints[i%len(VehicleBlueprints)])
		a.lane = i
		a.autopilot = true
	}
	w.placeTraffic()

	// Spawn points sit inside the road ring, clear of traffic.
	inner := cfg.TrackRadius * 0.4
	for i := 0; i < 4; i++ {
		yaw := float64(i) * 90
		rad := yaw * math.Pi / 180
		w.spawns = append(w.spawns, Transform{
			Location: Location{X: inner * math.Cos(rad), Y: inner * math.Sin(rad)},
			Rotation: Rotation{Yaw: yaw + 90},
		})
	}
	return w
}

func (w *Synthetic) newActor(typeID string) *synthActor {
	w.nextID++
	a := &synthActor{world: w, id: w.nextID, typeID: typeID, lane: -1}
	w.actors[a.id] = a
	return a
}

// Settings returns the current world settings.
func (w *Synthetic) Settings() (Settings, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings, nil
}

// ApplySettings replaces the world settings.
func (w *Synthetic) ApplySettings(s Settings) error {
	if s.FixedDeltaSeconds < 0 {
		return fmt.Errorf("fixed delta seconds must not be negative, got %v", s.FixedDeltaSeconds)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settings = s
	monitoring.Debugf("[Synthetic] settings: sync=%v delta=%.3f no_rendering=%v",
		s.SynchronousMode, s.FixedDeltaSeconds, s.NoRenderingMode)
	return nil
}

// SetTrafficManagerSync toggles traffic-manager synchronous mode.
func (w *Synthetic) SetTrafficManagerSync(enabled bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tmSync = enabled
	return nil
}

// TrafficManagerSync reports the traffic-manager synchronous mode.
func (w *Synthetic) TrafficManagerSync() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tmSync
}

// SpawnPoints returns the vehicle spawn points.
func (w *Synthetic) SpawnPoints() ([]Transform, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Transform(nil), w.spawns...), nil
}

// SpawnVehicle spawns the first catalogue vehicle whose id contains filter.
func (w *Synthetic) SpawnVehicle(filter string, at Transform, autopilot bool) (Actor, error) {
	typeID := ""
	for _, bp := range VehicleBlueprints {
		if strings.Contains(bp, filter) {
			typeID = bp
			break
		}
	}
	if typeID == "" {
		return nil, fmt.Errorf("no vehicle blueprint matches filter %q", filter)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	a := w.newActor(typeID)
	a.transform = at
	a.autopilot = autopilot
	return a, nil
}

// SpawnSensor attaches a ranging sensor built from bp to parent.
func (w *Synthetic) SpawnSensor(bp SensorBlueprint, at Transform, parent Actor) (Sensor, error) {
	kind, err := bp.Kind()
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("sensor %s needs a parent vehicle", bp.ID)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.actors[parent.ID()]; !ok {
		return nil, fmt.Errorf("parent %d: %w", parent.ID(), ErrActorDestroyed)
	}
	w.nextID++
	s := &synthSensor{
		synthActor: synthActor{world: w, id: w.nextID, typeID: bp.ID, transform: at, lane: -1},
		bp:         bp,
		kind:       kind,
		parent:     parent.ID(),
	}
	w.actors[s.id] = &s.synthActor
	w.sensors[s.id] = s
	return s, nil
}

// ActorIDs returns every live actor id in ascending order.
func (w *Synthetic) ActorIDs() ([]uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]uint32, 0, len(w.actors))
	for id := range w.actors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Frame returns the number of completed ticks.
func (w *Synthetic) Frame() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame
}

type delivery struct {
	fn  func([]byte)
	buf []byte
}

// Tick advances the world one step and delivers a frame to every listening
// sensor. Callbacks run on the caller's goroutine after the world lock is
// released.
func (w *Synthetic) Tick(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	w.mu.Lock()
	delta := w.settings.FixedDeltaSeconds
	if delta <= 0 {
		delta = 0.05
	}
	w.frame++
	w.elapsed += delta
	w.placeTraffic()
	w.driveAutopilot(delta)

	ids := make([]uint32, 0, len(w.sensors))
	for id := range w.sensors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []delivery
	for _, id := range ids {
		s := w.sensors[id]
		if s.fn == nil {
			continue
		}
		buf := w.scan(s, delta)
		if buf == nil {
			continue // parent destroyed
		}
		out = append(out, delivery{fn: s.fn, buf: buf})
	}
	frame := w.frame
	w.mu.Unlock()

	for _, d := range out {
		d.fn(d.buf)
	}
	return frame, nil
}

func (w *Synthetic) placeTraffic() {
	if w.cfg.Actors == 0 || w.cfg.TrackRadius <= 0 {
		return
	}
	angular := w.cfg.TrackSpeedMPS / w.cfg.TrackRadius
	for _, a := range w.actors {
		if a.lane < 0 {
			continue
		}
		base := float64(a.lane) * 2 * math.Pi / float64(w.cfg.Actors)
		angle := base + w.elapsed*angular
		a.transform.Location = Location{
			X: w.cfg.TrackRadius * math.Cos(angle),
			Y: w.cfg.TrackRadius * math.Sin(angle),
		}
		a.transform.Rotation.Yaw = (angle + math.Pi/2) * 180 / math.Pi
	}
}

// driveAutopilot moves spawned vehicles on autopilot along a circle about
// the world origin at EgoSpeedMPS.
func (w *Synthetic) driveAutopilot(delta float64) {
	for _, a := range w.actors {
		if a.lane >= 0 || !a.autopilot || strings.HasPrefix(a.typeID, "sensor.") {
			continue
		}
		loc := a.transform.Location
		r := math.Hypot(loc.X, loc.Y)
		if r == 0 {
			continue
		}
		angle := math.Atan2(loc.Y, loc.X) + w.cfg.EgoSpeedMPS*delta/r
		a.transform.Location.X = r * math.Cos(angle)
		a.transform.Location.Y = r * math.Sin(angle)
		a.transform.Rotation.Yaw = (angle + math.Pi/2) * 180 / math.Pi
	}
}

// hit describes the first surface a ray meets.
type hit struct {
	dist   float64
	normal r3.Vec
	objIdx uint32
	objTag uint32
}

// scan ray-casts one sensor frame and encodes it in the sensor's layout. It
// returns nil when the sensor has no parent to ride on.
func (w *Synthetic) scan(s *synthSensor, delta float64) []byte {
	parent, ok := w.actors[s.parent]
	if !ok {
		return nil
	}
	yaw := parent.transform.Rotation.Yaw * math.Pi / 180
	sinY, cosY := math.Sincos(yaw)
	m := s.transform.Location
	origin := r3.Vec{
		X: parent.transform.Location.X + m.X*cosY - m.Y*sinY,
		Y: parent.transform.Location.Y + m.X*sinY + m.Y*cosY,
		Z: parent.transform.Location.Z + m.Z,
	}

	channels := int(s.bp.Float("channels", 32))
	if channels < 1 {
		channels = 1
	}
	upper := s.bp.Float("upper_fov", 10)
	lower := s.bp.Float("lower_fov", -30)
	maxRange := s.bp.Float("range", 10)
	pps := s.bp.Float("points_per_second", 56000)
	rotHz := s.bp.Float("rotation_frequency", 10)

	perFrame := int(pps * delta)
	if w.cfg.MaxPoints > 0 && perFrame > w.cfg.MaxPoints {
		perFrame = w.cfg.MaxPoints
	}
	steps := perFrame / channels
	if steps < 1 {
		return []byte{}
	}
	sweep := math.Min(rotHz*delta, 1) * 360
	azStep := sweep / float64(steps)

	noise := s.bp.Float("noise_stddev", 0)
	general := s.bp.Float("dropoff_general_rate", DefaultDropoffGeneralRate)
	limit := s.bp.Float("dropoff_intensity_limit", DefaultDropoffIntensityLimit)
	zero := s.bp.Float("dropoff_zero_intensity", DefaultDropoffZeroIntensity)
	atten := s.bp.Float("atmosphere_attenuation_rate", DefaultAtmosphereAttenuation)

	var raw []parse.RawSample
	var sem []parse.SemanticSample
	for j := 0; j < steps; j++ {
		az := (s.azimuth + float64(j)*azStep) * math.Pi / 180
		sinA, cosA := math.Sincos(az)
		for c := 0; c < channels; c++ {
			elev := upper
			if channels > 1 {
				elev = upper - (upper-lower)*float64(c)/float64(channels-1)
			}
			sinE, cosE := math.Sincos(elev * math.Pi / 180)
			local := r3.Vec{X: cosE * cosA, Y: cosE * sinA, Z: sinE}
			dir := r3.Vec{
				X: local.X*cosY - local.Y*sinY,
				Y: local.X*sinY + local.Y*cosY,
				Z: local.Z,
			}
			h, ok := w.cast(origin, dir, maxRange, s.parent)
			if !ok {
				continue
			}
			if s.kind == lidar.SensorSemantic {
				sem = append(sem, parse.SemanticSample{
					Position: r3.Scale(h.dist, local),
					CosAngle: math.Abs(r3.Dot(dir, h.normal)),
					ObjIdx:   h.objIdx,
					ObjTag:   h.objTag,
				})
				continue
			}
			dist := h.dist
			if noise > 0 {
				dist += w.rng.NormFloat64() * noise
			}
			intensity := math.Exp(-atten * h.dist)
			if w.rng.Float64() < general {
				continue
			}
			if intensity < limit && w.rng.Float64() < zero*(1-intensity/limit) {
				continue
			}
			raw = append(raw, parse.RawSample{Position: r3.Scale(dist, local), Intensity: intensity})
		}
	}
	s.azimuth = math.Mod(s.azimuth+sweep, 360)

	if s.kind == lidar.SensorSemantic {
		return parse.EncodeSemantic(sem)
	}
	return parse.EncodeRaw(raw)
}

// cast returns the nearest surface along a unit ray within maxRange.
func (w *Synthetic) cast(origin, dir r3.Vec, maxRange float64, skip uint32) (hit, bool) {
	best := hit{dist: math.Inf(1)}

	if dir.Z < 0 {
		t := origin.Z / -dir.Z
		p := r3.Add(origin, r3.Scale(t, dir))
		best = hit{dist: t, normal: r3.Vec{Z: 1}, objTag: w.groundTag(math.Hypot(p.X, p.Y))}
	}

	if w.cfg.WallRadius > 0 {
		if t, ok := cylinderExit(origin, dir, r3.Vec{}, w.cfg.WallRadius); ok && t < best.dist {
			p := r3.Add(origin, r3.Scale(t, dir))
			if p.Z >= 0 && p.Z <= w.cfg.WallHeight {
				n := r3.Unit(r3.Vec{X: -p.X, Y: -p.Y})
				best = hit{dist: t, normal: n, objTag: tagBuildings}
			}
		}
	}

	for _, a := range w.actors {
		if a.id == skip || strings.HasPrefix(a.typeID, "sensor.") {
			continue
		}
		c := r3.Vec{X: a.transform.Location.X, Y: a.transform.Location.Y}
		t, ok := cylinderEntry(origin, dir, c, w.cfg.ActorRadius)
		if !ok || t >= best.dist {
			continue
		}
		p := r3.Add(origin, r3.Scale(t, dir))
		if p.Z < 0 || p.Z > w.cfg.ActorHeight {
			continue
		}
		n := r3.Unit(r3.Vec{X: p.X - c.X, Y: p.Y - c.Y})
		best = hit{dist: t, normal: n, objIdx: a.id, objTag: tagCar}
	}

	if math.IsInf(best.dist, 1) || best.dist > maxRange {
		return hit{}, false
	}
	return best, true
}

func (w *Synthetic) groundTag(r float64) uint32 {
	road := 4.0
	switch {
	case r < w.cfg.TrackRadius-road:
		return tagTerrain
	case r <= w.cfg.TrackRadius+road:
		return tagRoads
	case r <= w.cfg.TrackRadius+road+2:
		return tagSidewalks
	default:
		return tagGround
	}
}

// cylinderEntry intersects a ray with a vertical cylinder and returns the
// distance to the near side.
func cylinderEntry(o, d, c r3.Vec, radius float64) (float64, bool) {
	t0, _, ok := cylinderRoots(o, d, c, radius)
	if !ok || t0 <= 0 {
		return 0, false
	}
	return t0, true
}

// cylinderExit returns the far-side distance, used for rays starting inside.
func cylinderExit(o, d, c r3.Vec, radius float64) (float64, bool) {
	_, t1, ok := cylinderRoots(o, d, c, radius)
	if !ok || t1 <= 0 {
		return 0, false
	}
	return t1, true
}

func cylinderRoots(o, d, c r3.Vec, radius float64) (float64, float64, bool) {
	px, py := o.X-c.X, o.Y-c.Y
	a := d.X*d.X + d.Y*d.Y
	if a == 0 {
		return 0, 0, false
	}
	b := 2 * (px*d.X + py*d.Y)
	cc := px*px + py*py - radius*radius
	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	return (-b - sq) / (2 * a), (-b + sq) / (2 * a), true
}

// ID returns the actor id.
func (a *synthActor) ID() uint32 { return a.id }

// TypeID returns the blueprint id the actor was spawned from.
func (a *synthActor) TypeID() string { return a.typeID }

// Destroy removes the actor from the world. Destroying a vehicle does not
// destroy attached sensors.
func (a *synthActor) Destroy() error {
	w := a.world
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.actors[a.id]; !ok {
		return fmt.Errorf("actor %d: %w", a.id, ErrActorDestroyed)
	}
	delete(w.actors, a.id)
	delete(w.sensors, a.id)
	return nil
}

// Kind returns the payload layout the sensor produces.
func (s *synthSensor) Kind() lidar.SensorKind { return s.kind }

// Listen registers fn for every subsequent frame.
func (s *synthSensor) Listen(fn func(raw []byte)) error {
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sensors[s.id]; !ok {
		return fmt.Errorf("sensor %d: %w", s.id, ErrActorDestroyed)
	}
	s.fn = fn
	return nil
}

// Stop unregisters the frame callback.
func (s *synthSensor) Stop() error {
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()
	s.fn = nil
	return nil
}
