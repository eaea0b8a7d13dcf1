package model

import (
	"fmt"
	"time"

	"github.com/example/weighbridge/internal/common"
)

// SerialConfig describes the RS232 link to the scale indicator.
type SerialConfig struct {
	Parity      string `json:"parity"`
	BaudRate    int    `json:"baudRate"`
	DataBits    int    `json:"dataBits"`
	StopBits    int    `json:"stopBits"`
	AutoExtract bool   `json:"autoExtract"`
}

// supportedBaudRates is the fixed set the indicator hardware accepts.
var supportedBaudRates = []int{1200, 2400, 4800, 9600, 14400, 19200, 38400, 57600, 115200}

// DefaultSerialConfig returns the industry-standard indicator settings.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		BaudRate:    9600,
		DataBits:    8,
		Parity:      "none",
		StopBits:    1,
		AutoExtract: true,
	}
}

// Validate checks the configuration against the enumerated hardware options.
func (c SerialConfig) Validate() error {
	valid := false
	for _, b := range supportedBaudRates {
		if c.BaudRate == b {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: baud rate %d", common.ErrInvalidConfig, c.BaudRate)
	}
	if c.DataBits != 7 && c.DataBits != 8 {
		return fmt.Errorf("%w: data bits %d", common.ErrInvalidConfig, c.DataBits)
	}
	switch c.Parity {
	case "none", "even", "odd":
	default:
		return fmt.Errorf("%w: parity %q", common.ErrInvalidConfig, c.Parity)
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("%w: stop bits %d", common.ErrInvalidConfig, c.StopBits)
	}
	return nil
}

// AppConfig holds the site identity and ticket printing settings.
type AppConfig struct {
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	PrinterMode    string `json:"printerMode"`
	PaperSize      string `json:"paperSize"`
	TicketHeader   string `json:"ticketHeader"`
	TicketFooter   string `json:"ticketFooter"`
	AutoPrint      bool   `json:"autoPrint"`
}

// DefaultAppConfig returns the built-in site identity used on first run.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		CompanyName:    "WEIGHBRIDGE CONTROL SYSTEM",
		CompanyAddress: "Sistem Timbangan Digital Industrial v2.0",
		PrinterMode:    "thermal",
		PaperSize:      "80mm",
		TicketHeader:   "STRUK RESMI TIMBANGAN JEMBATAN",
		TicketFooter:   "DATA TELAH TERCATAT SECARA SISTEMATIS",
		AutoPrint:      true,
	}
}

// Session identifies the operator currently signed in at the terminal.
type Session struct {
	IssuedAt time.Time `json:"issuedAt"`
	Operator Operator  `json:"operator"`
}
