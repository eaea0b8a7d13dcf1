package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   int64
		wantOK bool
	}{
		{name: "typical indicator frame", line: "ST,GS,+00123 kg", want: 123, wantOK: true},
		{name: "bare number", line: "15000", want: 15000, wantOK: true},
		{name: "negative reading is folded", line: "-45", want: 45, wantOK: true},
		{name: "number embedded in noise", line: "WT=  8200kg CRC=xx", want: 8200, wantOK: true},
		{name: "first number wins", line: "12 kg 34", want: 12, wantOK: true},
		{name: "zero", line: "+0", want: 0, wantOK: true},
		{name: "noise only", line: "noise only", wantOK: false},
		{name: "empty line", line: "", wantOK: false},
		{name: "sign without digits", line: "ST,GS,+ kg", wantOK: false},
		{name: "overflowing digit run", line: "99999999999999999999999", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseWeight(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
