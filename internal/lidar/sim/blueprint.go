package sim

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/banshee-data/simlidar/internal/lidar"
)

// Blueprint identifiers for the two ranging sensor variants.
const (
	BlueprintRayCast         = "sensor.lidar.ray_cast"
	BlueprintRayCastSemantic = "sensor.lidar.ray_cast_semantic"
)

// Default sensor attributes applied by a simulator when the blueprint does not
// override them.
const (
	DefaultDropoffGeneralRate    = 0.45
	DefaultDropoffIntensityLimit = 0.8
	DefaultDropoffZeroIntensity  = 0.4
	DefaultAtmosphereAttenuation = 0.004
	NoiseStddev                  = 0.2
)

// SensorBlueprint names a sensor type and its string attributes, the way a
// simulator blueprint library expresses them.
type SensorBlueprint struct {
	ID         string
	Attributes map[string]string
}

// BlueprintOptions are the user-facing sensor parameters.
type BlueprintOptions struct {
	Semantic        bool
	NoNoise         bool
	UpperFOV        float64
	LowerFOV        float64
	Channels        float64
	Range           float64
	PointsPerSecond int
	DeltaSeconds    float64
}

// BlueprintFor builds the sensor blueprint for opts. The semantic variant has
// no noise model, so the noise attributes only apply to the ray-cast sensor.
func BlueprintFor(opts BlueprintOptions) (SensorBlueprint, error) {
	if opts.DeltaSeconds <= 0 {
		return SensorBlueprint{}, fmt.Errorf("delta seconds must be positive, got %v", opts.DeltaSeconds)
	}
	bp := SensorBlueprint{Attributes: make(map[string]string)}
	if opts.Semantic {
		bp.ID = BlueprintRayCastSemantic
	} else {
		bp.ID = BlueprintRayCast
		if opts.NoNoise {
			bp.Set("dropoff_general_rate", "0.0")
			bp.Set("dropoff_intensity_limit", "1.0")
			bp.Set("dropoff_zero_intensity", "0.0")
		} else {
			bp.Set("noise_stddev", formatFloat(NoiseStddev))
		}
	}
	bp.Set("upper_fov", formatFloat(opts.UpperFOV))
	bp.Set("lower_fov", formatFloat(opts.LowerFOV))
	bp.Set("channels", formatFloat(opts.Channels))
	bp.Set("range", formatFloat(opts.Range))
	bp.Set("rotation_frequency", formatFloat(1.0/opts.DeltaSeconds))
	bp.Set("points_per_second", strconv.Itoa(opts.PointsPerSecond))
	return bp, nil
}

// Set stores a string attribute.
func (bp *SensorBlueprint) Set(key, value string) {
	if bp.Attributes == nil {
		bp.Attributes = make(map[string]string)
	}
	bp.Attributes[key] = value
}

// Get returns a string attribute.
func (bp SensorBlueprint) Get(key string) (string, bool) {
	v, ok := bp.Attributes[key]
	return v, ok
}

// Float returns a numeric attribute or def when it is missing or malformed.
func (bp SensorBlueprint) Float(key string, def float64) float64 {
	v, ok := bp.Attributes[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Kind reports which payload layout a sensor built from bp produces.
func (bp SensorBlueprint) Kind() (lidar.SensorKind, error) {
	switch bp.ID {
	case BlueprintRayCast:
		return lidar.SensorRaycast, nil
	case BlueprintRayCastSemantic:
		return lidar.SensorSemantic, nil
	}
	return 0, fmt.Errorf("unknown sensor blueprint %q", bp.ID)
}

// Keys returns the attribute names in sorted order.
func (bp SensorBlueprint) Keys() []string {
	keys := make([]string, 0, len(bp.Attributes))
	for k := range bp.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'N' || c == 'I' {
			return s
		}
	}
	return s + ".0"
}
