// Package gpu provides an NVML-backed temperature source. Some msi-ec
// models do not expose a GPU temperature file, so the monitor can fall back
// to reading the discrete GPU directly.
package gpu

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/mhalver/msiecctl/internal/errors"
	"github.com/mhalver/msiecctl/internal/logger"
)

const (
	ErrInitFailed      = errors.ErrorCode("gpu_init_failed")
	ErrTemperatureRead = errors.ErrorCode("gpu_temperature_read_failed")
)

// Device wraps the first NVML device.
type Device struct {
	device nvml.Device
}

func New() (*Device, error) {
	errFactory := errors.New()

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, errFactory.WithData(ErrInitFailed, nvml.ErrorString(ret))
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return nil, errFactory.WithData(ErrInitFailed, nvml.ErrorString(ret))
	}

	if name, ret := device.GetName(); ret == nvml.SUCCESS {
		logger.Debug().Msgf("NVML fallback using GPU: %v", name)
	}

	return &Device{device: device}, nil
}

// Temperature reads the GPU core temperature in degrees Celsius.
func (d *Device) Temperature() (int, error) {
	temp, ret := d.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		return 0, errors.New().WithData(ErrTemperatureRead, nvml.ErrorString(ret))
	}

	return int(temp), nil
}

func (d *Device) Shutdown() error {
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return errors.New().WithData(errors.ErrShutdownFailed, nvml.ErrorString(ret))
	}

	return nil
}
