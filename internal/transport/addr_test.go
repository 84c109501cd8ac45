package transport

import "testing"

func TestParseMAC(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		want    [6]byte
		wantErr bool
	}{
		{
			name: "display order reversed into bdaddr order",
			addr: "80:7B:3E:21:79:EA",
			want: [6]byte{0xEA, 0x79, 0x21, 0x3E, 0x7B, 0x80},
		},
		{
			name: "lowercase accepted",
			addr: "80:7b:3e:21:79:ea",
			want: [6]byte{0xEA, 0x79, 0x21, 0x3E, 0x7B, 0x80},
		},
		{
			name:    "too few octets",
			addr:    "80:7B:3E:21:79",
			wantErr: true,
		},
		{
			name:    "octet not hex",
			addr:    "80:7B:3E:21:79:ZZ",
			wantErr: true,
		},
		{
			name:    "octet too long",
			addr:    "80:7B:3E:21:79:EAB",
			wantErr: true,
		},
		{
			name:    "empty",
			addr:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMAC(tt.addr)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseMAC(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}
