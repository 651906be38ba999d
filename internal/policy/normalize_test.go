package policy

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fwd IAT Max", "fwd_iat_max"},
		{"fwd_iat_max", "fwd_iat_max"},
		{"Fwd-IAT-Max", "fwd_iat_max"},
		{" Flow Bytes/s ", "flow_bytes_s"},
		{"Pkt.Len.Min", "pkt_len_min"},
		{"Durée", "duree"},
		{"__weird  name__", "weird_name"},
		{"UPPER", "upper"},
		{"pkts/s (total)", "pkts_s_total"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
