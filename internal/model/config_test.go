package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SerialConfig)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(_ *SerialConfig) {}},
		{name: "all supported bauds", mutate: func(c *SerialConfig) { c.BaudRate = 115200 }},
		{name: "unsupported baud", mutate: func(c *SerialConfig) { c.BaudRate = 9601 }, wantErr: true},
		{name: "seven data bits", mutate: func(c *SerialConfig) { c.DataBits = 7 }},
		{name: "bad data bits", mutate: func(c *SerialConfig) { c.DataBits = 9 }, wantErr: true},
		{name: "even parity", mutate: func(c *SerialConfig) { c.Parity = "even" }},
		{name: "bad parity", mutate: func(c *SerialConfig) { c.Parity = "mark" }, wantErr: true},
		{name: "two stop bits", mutate: func(c *SerialConfig) { c.StopBits = 2 }},
		{name: "bad stop bits", mutate: func(c *SerialConfig) { c.StopBits = 3 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSerialConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	assert.NotEmpty(t, cfg.CompanyName)
	assert.NotEmpty(t, cfg.TicketHeader)
	assert.NotEmpty(t, cfg.TicketFooter)
	assert.True(t, cfg.AutoPrint)
}
