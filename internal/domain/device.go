package domain

// Emulated device labels understood by the audit engine.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

// DeviceCatalog translates an emulated device label to its stable
// numeric identifier. The catalog is owned by the host platform; the
// pipeline only consumes it.
type DeviceCatalog interface {
	// DeviceID returns the stable identifier for a device label.
	// The second return value is false for unknown labels.
	DeviceID(label string) (int64, bool)
}

// StaticDeviceCatalog is the built-in label→id mapping.
type StaticDeviceCatalog map[string]int64

// DeviceID implements DeviceCatalog.
func (c StaticDeviceCatalog) DeviceID(label string) (int64, bool) {
	id, ok := c[label]
	return id, ok
}

// DefaultDevices returns the catalog for the standard emulated devices.
func DefaultDevices() StaticDeviceCatalog {
	return StaticDeviceCatalog{
		DeviceDesktop: 1,
		DeviceMobile:  2,
	}
}
