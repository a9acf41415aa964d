package ec

// Sensor identifies a temperature source exposed by the embedded controller.
type Sensor string

const (
	SensorCPU Sensor = "cpu"
	SensorGPU Sensor = "gpu"
)

// Gateway abstracts the msi-ec driver interface so the control loop can be
// driven by a fake in tests. Implementations read temperatures in whole
// degrees Celsius and expose the binary cooler boost switch.
type Gateway interface {
	Temperature(sensor Sensor) (int, error)
	BoostEnabled() (bool, error)
	SetBoost(enabled bool) error
}
