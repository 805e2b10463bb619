package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/search"
)

func referenceDocument(t *testing.T) Document {
	t.Helper()
	a := model.NewLoan(3767.08, 4.3)
	b := model.NewLoan(12108.60, 7.3)
	candidates, err := search.Sweep(120, 140, 1)
	require.NoError(t, err)

	rep, err := search.Run(context.Background(), search.Params{A: a, B: b, Budget: 450, Candidates: candidates})
	require.NoError(t, err)
	require.NotNil(t, rep.Best)

	schedule, _, err := amortize.JointSchedule(a, b, rep.Best.Plan, 450)
	require.NoError(t, err)

	return FromSearch(a, b, 450, rep, 5, schedule)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"json": JSON, "YAML": YAML, ".yml": YAML, "toml": TOML, ".pdf": PDF,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
	assert.Equal(t, ".yaml", YAML.Ext())
}

func TestFromSearch(t *testing.T) {
	doc := referenceDocument(t)

	require.NotNil(t, doc.Plan)
	assert.Equal(t, 120.0, doc.Plan.PaymentA)
	assert.Equal(t, 40, doc.Result.Months)
	assert.True(t, doc.Search.Feasible)
	assert.Len(t, doc.Search.Top, 5)
	assert.Len(t, doc.Schedule, 40)
}

func TestFromSearch_NoFeasibleSplit(t *testing.T) {
	a := model.Loan{Principal: 10000, MonthlyRate: 0.02}
	rep := search.Report{Rejected: 3}

	doc := FromSearch(a, a, 300, rep, 5, nil)
	assert.Nil(t, doc.Plan)
	assert.False(t, doc.Search.Feasible)

	var buf bytes.Buffer
	for _, f := range Formats {
		buf.Reset()
		require.NoError(t, Write(&buf, f, doc), f)
		assert.NotZero(t, buf.Len(), f)
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, referenceDocument(t)))

	var got struct {
		Kind   string       `json:"kind"`
		Plan   model.Plan   `json:"plan"`
		Result model.Result `json:"result"`
		Search struct {
			Top []struct {
				Status string `json:"status"`
			} `json:"top"`
		} `json:"search"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "split", got.Kind)
	assert.Equal(t, 330.0, got.Plan.PaymentB)
	assert.Equal(t, 40, got.Result.Months)
	require.NotEmpty(t, got.Search.Top)
	assert.Equal(t, "accepted", got.Search.Top[0].Status)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, YAML, referenceDocument(t)))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "split", got["kind"])
	assert.Contains(t, buf.String(), "payment_a: 120")
}

func TestWrite_TOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, TOML, referenceDocument(t)))

	var got map[string]any
	_, err := toml.Decode(buf.String(), &got)
	require.NoError(t, err)
	assert.Equal(t, "split", got["kind"])

	schedule, ok := got["schedule"].([]map[string]any)
	require.True(t, ok, "schedule is an array of tables")
	assert.Len(t, schedule, 40)
}

func TestWrite_PDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PDF, referenceDocument(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	a := model.NewLoan(34767.08, 4.3)
	periods, res, err := amortize.SingleSchedule(a.Principal, a.MonthlyRate, 220)
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, Write(&buf, PDF, FromSingle(a, 220, res, periods)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("csv"), Document{}))
}
