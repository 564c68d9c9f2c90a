package rewrite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqlrewrite/internal/testutil"
)

func TestReplaceDateDiff(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "lower bound only",
			sql:  "SELECT a FROM t WHERE datediff(order_date, today) >= 7",
			want: "SELECT a FROM t WHERE order_date >= '2024-03-08'",
		},
		{
			name: "closed range",
			sql:  "SELECT a FROM t WHERE datediff('day', dt, '2024-03-15') <= 7",
			want: "SELECT a FROM t WHERE (dt >= '2024-03-08' AND dt <= '2024-03-15')",
		},
		{
			name: "weeks strictly greater",
			sql:  "SELECT a FROM t WHERE datediff('week', dt, '2024-03-15') > 2",
			want: "SELECT a FROM t WHERE dt > '2024-03-01'",
		},
		{
			name: "months strictly less",
			sql:  "SELECT a FROM t WHERE datediff('month', dt, current_date) < 1",
			want: "SELECT a FROM t WHERE (dt > '2024-02-15' AND dt < '2024-03-15')",
		},
		{
			name: "half a year",
			sql:  "SELECT a FROM t WHERE DATEDIFF('year', dt, now()) = 0.5",
			want: "SELECT a FROM t WHERE (dt >= '2023-09-15' AND dt <= '2024-03-15')",
		},
		{
			name: "explicit reference date",
			sql:  "SELECT a FROM t WHERE datediff('year', dt, '2020-02-29') <= 1",
			want: "SELECT a FROM t WHERE (dt >= '2019-03-01' AND dt <= '2020-02-29')",
		},
		{
			name: "next to other conditions",
			sql:  "SELECT a FROM t WHERE city = 'sz' AND datediff(dt, '2024-03-15') <= 1",
			want: "SELECT a FROM t WHERE city = 'sz' AND (dt >= '2024-03-14' AND dt <= '2024-03-15')",
		},
		{
			name: "derived table",
			sql:  "SELECT a FROM (SELECT a FROM t WHERE datediff(dt, today) >= 1) s",
			want: "SELECT a FROM (SELECT a FROM t WHERE dt >= '2024-03-14') AS s",
		},
		{
			name: "other functions untouched",
			sql:  "SELECT a FROM t WHERE dateadd(dt, 1) >= 7",
			want: "SELECT a FROM t WHERE dateadd(dt, 1) >= 7",
		},
	}

	r := newTestRewriter(t, WithClock(testutil.FixedClock(2024, time.March, 15)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ReplaceDateDiff(tt.sql))
		})
	}
}

func TestReplaceDateDiff_LeftUnchanged(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "fractional amount", sql: "SELECT a FROM t WHERE datediff('day', dt, '2024-03-15') <= 1.5"},
		{name: "unsupported operator", sql: "SELECT a FROM t WHERE datediff('day', dt, '2024-03-15') <> 3"},
		{name: "unknown unit", sql: "SELECT a FROM t WHERE datediff('hour', dt, '2024-03-15') <= 3"},
		{name: "bad reference", sql: "SELECT a FROM t WHERE datediff(dt, '15/03/2024') <= 3"},
		{name: "amount is a column", sql: "SELECT a FROM t WHERE datediff(dt, today) <= n"},
		{name: "amount overflows", sql: "SELECT a FROM t WHERE datediff('day', dt, '2024-05-10') <= 99999999999999999999"},
		{name: "date before year one", sql: "SELECT a FROM t WHERE datediff('year', dt, '2024-05-10') <= 5000"},
		{name: "date after year 9999", sql: "SELECT a FROM t WHERE datediff('month', dt, '2024-05-10') <= -100000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := testutil.NewCaptureLogger()
			r := New(WithLogger(logger), WithClock(testutil.FixedClock(2024, time.March, 15)))

			assert.Equal(t, tt.sql, r.ReplaceDateDiff(tt.sql))
			assert.Contains(t, buf.String(), "datediff filter left unchanged")
		})
	}
}
