package inventory

import (
	"reflect"
	"testing"
)

func TestParsePortSpec(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []PortBinding
	}{
		{
			name: "simple binding",
			in:   "0.0.0.0:8080->80/tcp",
			want: []PortBinding{{
				HostIP:        "0.0.0.0",
				HostPort:      "8080",
				ContainerPort: "80",
				Protocol:      "tcp",
				Link:          "http://localhost:8080",
			}},
		},
		{
			name: "ipv6 any address",
			in:   ":::8080->80/tcp",
			want: []PortBinding{{
				HostIP:        "::",
				HostPort:      "8080",
				ContainerPort: "80",
				Protocol:      "tcp",
				Link:          "http://localhost:8080",
			}},
		},
		{
			name: "unbound exposed port",
			in:   "6379/tcp",
			want: []PortBinding{{
				ContainerPort: "6379",
				Protocol:      "tcp",
			}},
		},
		{
			name: "missing protocol suffix",
			in:   "0.0.0.0:9000->9000",
			want: []PortBinding{{
				HostIP:        "0.0.0.0",
				HostPort:      "9000",
				ContainerPort: "9000",
				Protocol:      "tcp",
				Link:          "http://localhost:9000",
			}},
		},
		{
			name: "empty string",
			in:   "",
			want: nil,
		},
		{
			name: "multiple segments",
			in:   "0.0.0.0:8080->80/tcp, 6379/tcp",
			want: []PortBinding{
				{
					HostIP:        "0.0.0.0",
					HostPort:      "8080",
					ContainerPort: "80",
					Protocol:      "tcp",
					Link:          "http://localhost:8080",
				},
				{
					ContainerPort: "6379",
					Protocol:      "tcp",
				},
			},
		},
		{
			name: "specific host ip keeps verbatim link host",
			in:   "192.168.1.5:443->443/tcp",
			want: []PortBinding{{
				HostIP:        "192.168.1.5",
				HostPort:      "443",
				ContainerPort: "443",
				Protocol:      "tcp",
				Link:          "http://192.168.1.5:443",
			}},
		},
		{
			name: "udp protocol",
			in:   "0.0.0.0:53->53/udp",
			want: []PortBinding{{
				HostIP:        "0.0.0.0",
				HostPort:      "53",
				ContainerPort: "53",
				Protocol:      "udp",
				Link:          "http://localhost:53",
			}},
		},
		{
			name: "host side without colon degrades to bare host port",
			in:   "8080->80/tcp",
			want: []PortBinding{{
				HostPort:      "8080",
				ContainerPort: "80",
				Protocol:      "tcp",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePortSpec(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePortSpec(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePortSpecIsTotal(t *testing.T) {
	// Garbage never errors or panics; it degrades to best-effort fields.
	for _, in := range []string{",,,", "->", "a->b->c", ":::", "   "} {
		_ = ParsePortSpec(in)
	}
}
