package kernel

import "hash/fnv"

// === SimulationKey ===

// SimulationKey identifies a reproducible run. Two runs with the same key and
// identical configuration MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

// SubsystemSensors prefixes per-sensor noise streams.
const SubsystemSensors = "sensor/"

// SubsystemSensor returns the subsystem name for the named sensor.
func SubsystemSensor(name string) string {
	return SubsystemSensors + name
}

// ForSubsystem derives an isolated seed for the named subsystem:
// key XOR fnv1a64(name). Derivation is order-independent, so adding a sensor
// never perturbs another sensor's stream.
func (k SimulationKey) ForSubsystem(name string) int64 {
	return int64(k) ^ fnv1a64(name)
}

// UnitFloat returns a value in [0, 1) that depends only on (seed, tick).
// Unlike math/rand streams it keeps no position, which is what lets noise
// sensors stay pure functions of the tick.
func UnitFloat(seed, tick int64) float64 {
	x := mix64(uint64(seed) ^ mix64(uint64(tick)))
	return float64(x>>11) / (1 << 53)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
