package ec

import "github.com/mhalver/msiecctl/internal/errors"

const (
	// Driver errors
	ErrDriverNotFound = errors.ErrorCode("ec_driver_not_found")

	// Sensor errors
	ErrUnknownSensor = errors.ErrorCode("ec_unknown_sensor")
	ErrSensorRead    = errors.ErrorCode("ec_sensor_read_failed")
	ErrSensorParse   = errors.ErrorCode("ec_sensor_parse_failed")

	// Actuator errors
	ErrActuatorRead  = errors.ErrorCode("ec_actuator_read_failed")
	ErrActuatorWrite = errors.ErrorCode("ec_actuator_write_failed")
)
