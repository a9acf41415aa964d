package ec

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mhalver/msiecctl/internal/errors"
)

const (
	// DefaultBasePath is where the msi-ec kernel module exposes its controls.
	DefaultBasePath = "/sys/devices/platform/msi-ec"

	temperatureFile = "realtime_temperature"
	coolerBoostFile = "cooler_boost"

	boostOn  = "on"
	boostOff = "off"

	controlFilePerm = 0o644
)

// SysfsGateway talks to the msi-ec driver through its sysfs files.
type SysfsGateway struct {
	basePath   string
	errFactory errors.Factory
}

// NewSysfsGateway returns a gateway rooted at basePath, or at the driver's
// standard location when basePath is empty.
func NewSysfsGateway(basePath string) *SysfsGateway {
	if basePath == "" {
		basePath = DefaultBasePath
	}

	return &SysfsGateway{
		basePath:   basePath,
		errFactory: errors.New(),
	}
}

func (g *SysfsGateway) checkDriver() error {
	if _, err := os.Stat(g.basePath); err != nil {
		return g.errFactory.WithMessage(ErrDriverNotFound,
			"msi-ec driver not found at "+g.basePath+"; ensure the msi-ec kernel module is loaded")
	}

	return nil
}

// Temperature reads one sensor in whole degrees Celsius.
func (g *SysfsGateway) Temperature(sensor Sensor) (int, error) {
	switch sensor {
	case SensorCPU, SensorGPU:
	default:
		return 0, g.errFactory.WithData(ErrUnknownSensor, string(sensor))
	}

	if err := g.checkDriver(); err != nil {
		return 0, err
	}

	raw, err := os.ReadFile(filepath.Join(g.basePath, string(sensor), temperatureFile))
	if err != nil {
		return 0, g.errFactory.Wrap(ErrSensorRead, err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, g.errFactory.WithData(ErrSensorParse, strings.TrimSpace(string(raw)))
	}

	return value, nil
}

// BoostEnabled reads the current cooler boost switch from the EC.
func (g *SysfsGateway) BoostEnabled() (bool, error) {
	if err := g.checkDriver(); err != nil {
		return false, err
	}

	raw, err := os.ReadFile(filepath.Join(g.basePath, coolerBoostFile))
	if err != nil {
		return false, g.errFactory.Wrap(ErrActuatorRead, err)
	}

	return strings.TrimSpace(string(raw)) == boostOn, nil
}

// SetBoost writes the cooler boost switch. The driver expects the literal
// strings "on" and "off".
func (g *SysfsGateway) SetBoost(enabled bool) error {
	if err := g.checkDriver(); err != nil {
		return err
	}

	value := boostOff
	if enabled {
		value = boostOn
	}

	if err := os.WriteFile(filepath.Join(g.basePath, coolerBoostFile), []byte(value), controlFilePerm); err != nil {
		return g.errFactory.Wrap(ErrActuatorWrite, err)
	}

	return nil
}
