package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAlertsCounter(t *testing.T) {
	before := testutil.ToFloat64(Alerts.WithLabelValues("over_limit"))
	Alerts.WithLabelValues("over_limit").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Alerts.WithLabelValues("over_limit")))
}

func TestTransactionsRecordedCounter(t *testing.T) {
	before := testutil.ToFloat64(TransactionsRecorded.WithLabelValues("expense"))
	TransactionsRecorded.WithLabelValues("expense").Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(TransactionsRecorded.WithLabelValues("expense")))
}
