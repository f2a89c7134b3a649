package models

import (
	"runtime"

	"github.com/google/uuid"
)

// DeviceInfo identifies the installation to the server. It is attached to
// every auth request so the backend can track sessions per device.
type DeviceInfo struct {
	DeviceModel string `json:"device_model"`
	DeviceBrand string `json:"device_brand"`
	DeviceID    string `json:"device_id"`
	DeviceType  string `json:"device_type"`
	OSName      string `json:"os_name"`
	OSVersion   string `json:"os_version"`
	AppVersion  string `json:"app_version"`
	IsEmulator  bool   `json:"is_emulator"`
}

// CollectDeviceInfo builds a DeviceInfo for a headless host. An empty
// deviceID falls back to a random per-process one; callers wanting a stable
// install identity persist an ID and pass it in.
func CollectDeviceInfo(appVersion, deviceID string) DeviceInfo {
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	return DeviceInfo{
		DeviceModel: "headless",
		DeviceBrand: "tagpay",
		DeviceID:    deviceID,
		DeviceType:  "cli",
		OSName:      runtime.GOOS,
		OSVersion:   runtime.GOARCH,
		AppVersion:  appVersion,
	}
}
