package prom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorderCountsByOpAndResult(t *testing.T) {
	r := NewRecorder()
	r.RecordSuccess("claim_income")
	r.RecordSuccess("claim_income")
	r.RecordConflict("claim_income")
	r.RecordFailure("attack_territory")

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "turfcontrol_ledger_operations_total", families[0].GetName())

	got := map[string]float64{}
	for _, m := range families[0].GetMetric() {
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		got[labels["op"]+"/"+labels["result"]] = m.GetCounter().GetValue()
	}
	require.Equal(t, map[string]float64{
		"claim_income/success":     2,
		"claim_income/conflict":    1,
		"attack_territory/failure": 1,
	}, got)
}
