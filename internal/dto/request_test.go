package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFallEventReport(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		want         FallEventReport
		wantWarnings int
	}{
		{
			name: "complete report",
			body: `{"detect":true,"type":"real alert","device_id":"esp-7"}`,
			want: FallEventReport{Detect: true, Type: "real alert", DeviceID: "esp-7"},
		},
		{
			name: "only detect",
			body: `{"detect":false}`,
			want: FallEventReport{Detect: false, Type: "unknown", DeviceID: "unknown"},
		},
		{
			name: "empty object",
			body: `{}`,
			want: FallEventReport{Type: "unknown", DeviceID: "unknown"},
		},
		{
			name: "nulls are absent",
			body: `{"detect":null,"type":null,"device_id":null}`,
			want: FallEventReport{Type: "unknown", DeviceID: "unknown"},
		},
		{
			name: "string detect",
			body: `{"detect":"True","type":"real alert"}`,
			want: FallEventReport{Detect: true, Type: "real alert", DeviceID: "unknown"},
		},
		{
			name: "numeric detect and device id",
			body: `{"detect":1,"type":"false alert","device_id":42}`,
			want: FallEventReport{Detect: true, Type: "false alert", DeviceID: "42"},
		},
		{
			name: "empty strings default",
			body: `{"detect":true,"type":"","device_id":""}`,
			want: FallEventReport{Detect: true, Type: "unknown", DeviceID: "unknown"},
		},
		{
			name:         "wrong types",
			body:         `{"detect":"sometimes","type":["real alert"],"device_id":{"id":1}}`,
			want:         FallEventReport{Detect: false, Type: "unknown", DeviceID: "unknown"},
			wantWarnings: 3,
		},
		{
			name:         "not an object",
			body:         `[1,2,3]`,
			want:         FallEventReport{Type: "unknown", DeviceID: "unknown"},
			wantWarnings: 1,
		},
		{
			name:         "invalid json",
			body:         `{"detect":tru`,
			want:         FallEventReport{Type: "unknown", DeviceID: "unknown"},
			wantWarnings: 1,
		},
		{
			name: "empty body",
			body: ``,
			want: FallEventReport{Type: "unknown", DeviceID: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := ParseFallEventReport([]byte(tt.body))
			assert.Equal(t, tt.want, got)
			assert.Len(t, warnings, tt.wantWarnings)
		})
	}
}
