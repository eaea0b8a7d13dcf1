package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/example/weighbridge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedTx(id, plate, driver string, w1, w2 int64) model.Transaction {
	first := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	tx := model.Transaction{
		ID:             id,
		TicketNumber:   "OUT-" + id,
		Direction:      model.DirectionOutbound,
		PlateNumber:    plate,
		DriverName:     driver,
		CargoType:      "SAWIT (FFB)",
		PartyName:      "PT BANGUN INDUSTRI NUSANTARA",
		FirstWeight:    w1,
		FirstTimestamp: first,
		Status:         model.StatusPending,
		Operator:       "OPERATOR 1",
		OperatorRole:   model.RoleOperator,
	}
	if err := tx.Complete(w2, first.Add(45*time.Minute)); err != nil {
		panic(err)
	}
	return tx
}

func TestFilter(t *testing.T) {
	pending := model.Transaction{
		ID: "p1", Direction: model.DirectionOutbound,
		PlateNumber: "B7777GG", Status: model.StatusPending,
	}
	inbound := completedTx("300001", "D9999ZZ", "BAMBANG", 9000, 4000)
	inbound.Direction = model.DirectionInbound

	txs := []model.Transaction{
		completedTx("100001", "B1234ABC", "SUPARMAN", 15000, 8000),
		completedTx("100002", "D5678XYZ", "JOKO", 12000, 7000),
		pending,
		inbound,
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "all completed outbound", query: "", wantIDs: []string{"100001", "100002"}},
		{name: "plate match", query: "1234", wantIDs: []string{"100001"}},
		{name: "driver match lower case", query: "joko", wantIDs: []string{"100002"}},
		{name: "query with spaces", query: "  suparman ", wantIDs: []string{"100001"}},
		{name: "no match", query: "F0000", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(txs, model.DirectionOutbound, tt.query)
			ids := make([]string, 0, len(got))
			for _, tx := range got {
				ids = append(ids, tx.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSummarize(t *testing.T) {
	txs := []model.Transaction{
		completedTx("100001", "B1234ABC", "SUPARMAN", 15000, 8000), // netto 7000
		completedTx("100002", "D5678XYZ", "JOKO", 12000, 7000),     // netto 5000
	}

	s := Summarize(txs)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, int64(12000), s.TotalNet)

	empty := Summarize(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.TotalNet)
}

func TestProjectionInvariants(t *testing.T) {
	tests := []struct {
		name   string
		w1, w2 int64
	}{
		{name: "loaded first", w1: 15000, w2: 8000},
		{name: "empty first", w1: 8000, w2: 15000},
		{name: "equal weighings", w1: 10000, w2: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := completedTx("100001", "B1AAA", "X", tt.w1, tt.w2)
			assert.GreaterOrEqual(t, tx.Bruto(), tx.Tara())
			assert.Equal(t, tx.Bruto()-tx.Tara(), tx.NetWeight)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	txs := []model.Transaction{
		completedTx("100001", "B1234ABC", "SUPARMAN", 15000, 8000),
	}

	require.NoError(t, WriteCSV(&buf, txs))
	out := buf.String()

	// Byte-order mark so spreadsheet imports detect UTF-8.
	assert.True(t, strings.HasPrefix(out, "\uFEFF"))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "No. Tiket,Tanggal,Plat,Sopir,Muatan,Pelanggan,Bruto,Tara,Netto,Operator",
		strings.TrimPrefix(lines[0], "\uFEFF"))
	assert.Equal(t,
		`"OUT-100001","01/06/2025","B1234ABC","SUPARMAN","SAWIT (FFB)","PT BANGUN INDUSTRI NUSANTARA",15000,8000,7000,"OPERATOR 1"`,
		lines[1])
}

func TestWriteCSV_QuotesEscaped(t *testing.T) {
	var buf bytes.Buffer
	tx := completedTx("100001", "B1234ABC", `JOKO "SI KILAT"`, 15000, 8000)

	require.NoError(t, WriteCSV(&buf, []model.Transaction{tx}))
	assert.Contains(t, buf.String(), `"JOKO ""SI KILAT"""`)
}

func TestRenderTicket(t *testing.T) {
	cfg := model.DefaultAppConfig()
	tx := completedTx("100001", "B1234ABC", "SUPARMAN", 15000, 8000)

	out := RenderTicket(&tx, cfg)

	assert.Contains(t, out, cfg.CompanyName)
	assert.Contains(t, out, cfg.TicketHeader)
	assert.Contains(t, out, cfg.TicketFooter)
	assert.Contains(t, out, "#OUT-100001")
	assert.Contains(t, out, "B1234ABC")
	assert.Contains(t, out, "15000 KG") // bruto
	assert.Contains(t, out, "8000 KG")  // tara
	assert.Contains(t, out, "7000 KG")  // netto
	assert.Contains(t, out, "OP: OPERATOR 1")
	assert.Contains(t, out, "PRO: OPERATOR")
}

func TestRenderTicket_MissingDriver(t *testing.T) {
	tx := completedTx("100001", "B1234ABC", "", 15000, 8000)
	out := RenderTicket(&tx, model.DefaultAppConfig())
	assert.Contains(t, out, "PENGEMUDI")
	assert.Contains(t, out, "-")
}
