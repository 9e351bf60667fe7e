package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tax := Default()
	require.NotNil(t, tax)
	assert.Same(t, tax, Default())

	assert.Equal(t, []string{"Facebook", "Tiktok", "Weibo", "Youtube", "non-SN"}, tax.Platforms)
	assert.Len(t, tax.Devices, 35)
	assert.Equal(t, 3, tax.DeviceIDLength)
}

func TestDevice(t *testing.T) {
	tax := Default()

	tests := []struct {
		id    string
		brand string
		os    string
	}{
		{"D01", "Samsung", "Android"},
		{"D02", "Apple", "iOS"},
		{"D17", "Microsoft", "WindowsMobile"},
		{"D24", "Xiaomi", "Android"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, err := tax.Device(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.brand, d.Brand)
			assert.Equal(t, tt.os, d.OS)
		})
	}

	_, err := tax.Device("D99")
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestFamilies(t *testing.T) {
	tax := Default()

	assert.Equal(t, "ffmpeg", tax.Family("ffmpeg3"))
	assert.Equal(t, "kdenlive", tax.Family("kdenlive"))
	assert.Equal(t, []string{"avidemux", "exiftool", "ffmpeg", "kdenlive", "native", "premiere"}, tax.MergedClasses())
	assert.Equal(t, []string{"ffmpeg1", "ffmpeg2", "ffmpeg3", "ffmpeg4", "ffmpeg5"}, tax.Variants("ffmpeg"))
	assert.True(t, tax.IsNative("native"))
}

func TestDeviceID(t *testing.T) {
	tax := Default()
	assert.Equal(t, "D04", tax.DeviceID("D04_V_flat_move_0001"))
	assert.Equal(t, "D4", tax.DeviceID("D4"))
}

func TestOSOrder(t *testing.T) {
	tax := Default()
	got := tax.OSOrder(map[string]struct{}{"iOS": {}, "Android": {}})
	assert.Equal(t, []string{"Android", "iOS"}, got)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tax.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
platforms: [A]
native_platform: A
classes: [x]
native_class: y
device_id_length: 1
operating_systems: [Android]
default_os: Android
devices: {Z: Foo}
`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "native class")
}

func TestLoad_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tax.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
platforms: [Before-YouTube, After-YouTube]
native_platform: Before-YouTube
classes: [native, ffmpeg1, ffmpeg2]
native_class: native
families:
  - {prefix: ffmpeg, name: ffmpeg}
reencoding: {before: Before-YouTube, after: After-YouTube, suffix: -YouTube}
device_id_length: 3
operating_systems: [Android, iOS]
default_os: Android
brand_os: {Apple: iOS}
devices: {D01: Samsung, D02: Apple}
`), 0o600))

	tax, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"native", "ffmpeg"}, tax.MergedClasses())
	assert.Equal(t, "-YouTube", tax.Reencoding.Suffix)
}
