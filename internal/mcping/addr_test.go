package mcping

import "testing"

func TestParseAddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Addr
		wantErr bool
	}{
		{
			name:  "bare hostname",
			input: "play.example.com",
			want:  Addr{Host: "play.example.com", Port: 25565},
		},
		{
			name:  "hostname with port",
			input: "play.example.com:25570",
			want:  Addr{Host: "play.example.com", Port: 25570, ExplicitPort: true},
		},
		{
			name:  "surrounding whitespace",
			input: "  mc.hypixel.net  ",
			want:  Addr{Host: "mc.hypixel.net", Port: 25565},
		},
		{
			name:  "ipv4 with port",
			input: "192.168.1.10:1234",
			want:  Addr{Host: "192.168.1.10", Port: 1234, ExplicitPort: true},
		},
		{
			name:  "bracketed ipv6",
			input: "[2001:db8::1]",
			want:  Addr{Host: "2001:db8::1", Port: 25565},
		},
		{
			name:  "bracketed ipv6 with port",
			input: "[2001:db8::1]:25566",
			want:  Addr{Host: "2001:db8::1", Port: 25566, ExplicitPort: true},
		},
		{
			name:  "bare ipv6",
			input: "2001:db8::1",
			want:  Addr{Host: "2001:db8::1", Port: 25565},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "port zero", input: "example.com:0", wantErr: true},
		{name: "port out of range", input: "example.com:70000", wantErr: true},
		{name: "port not numeric", input: "example.com:abc", wantErr: true},
		{name: "trailing colon", input: "example.com:", wantErr: true},
		{name: "embedded space", input: "exa mple.com", wantErr: true},
		{name: "path separator", input: "example.com/path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddr(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAddr(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddr(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAddr(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddrString(t *testing.T) {
	tests := []struct {
		name string
		addr Addr
		want string
	}{
		{"hostname", Addr{Host: "play.example.com", Port: 25565}, "play.example.com:25565"},
		{"ipv6", Addr{Host: "2001:db8::1", Port: 25566}, "[2001:db8::1]:25566"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
