package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqlrewrite/internal/testutil"
)

func newTestRewriter(t *testing.T, opts ...Option) *Rewriter {
	t.Helper()
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
	return New(opts...)
}

func TestReplaceSelectFields(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		fields map[string]string
		want   string
	}{
		{
			name:   "function argument and alias",
			sql:    "SELECT cnt(amount) AS amount FROM t",
			fields: map[string]string{"amount": "revenue"},
			want:   "SELECT cnt(revenue) AS revenue FROM t",
		},
		{
			name:   "bare columns",
			sql:    "SELECT dept AS d, amount FROM t",
			fields: map[string]string{"dept": "department", "amount": "revenue"},
			want:   "SELECT department AS department, revenue FROM t",
		},
		{
			name:   "other clauses untouched",
			sql:    "SELECT amount FROM t WHERE amount > 1",
			fields: map[string]string{"amount": "revenue"},
			want:   "SELECT revenue FROM t WHERE amount > 1",
		},
		{
			name:   "multi-argument call skipped",
			sql:    "SELECT round(amount, 2) AS a FROM t",
			fields: map[string]string{"amount": "revenue"},
			want:   "SELECT round(amount, 2) AS a FROM t",
		},
		{
			name:   "set operation unchanged",
			sql:    "select amount from t union select amount from u",
			fields: map[string]string{"amount": "revenue"},
			want:   "select amount from t union select amount from u",
		},
		{
			name:   "not sql",
			sql:    "not sql at all",
			fields: map[string]string{"amount": "revenue"},
			want:   "not sql at all",
		},
	}

	r := newTestRewriter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ReplaceSelectFields(tt.sql, tt.fields))
		})
	}
}

func TestReplaceAggFields(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		aggs map[string]AggTarget
		want string
	}{
		{
			name: "count distinct",
			sql:  "SELECT sum(uid) AS uid FROM t",
			aggs: map[string]AggTarget{"uid": {Field: "user_id", Operator: AggCountDistinct}},
			want: "SELECT COUNT(DISTINCT user_id) AS user_id FROM t",
		},
		{
			name: "operator replaces function name",
			sql:  "SELECT count(pv) FROM t",
			aggs: map[string]AggTarget{"pv": {Field: "pv_total", Operator: AggSum}},
			want: "SELECT SUM(pv_total) FROM t",
		},
		{
			name: "non-column argument skipped",
			sql:  "SELECT sum(pv + 1) AS x, max(uv) AS uv FROM t",
			aggs: map[string]AggTarget{
				"pv": {Field: "pv2", Operator: AggSum},
				"uv": {Field: "uv2", Operator: AggMax},
			},
			want: "SELECT sum(pv + 1) AS x, MAX(uv2) AS uv2 FROM t",
		},
		{
			name: "unknown operator keeps function",
			sql:  "SELECT avg(pv) FROM t",
			aggs: map[string]AggTarget{"pv": {Field: "pv2"}},
			want: "SELECT avg(pv2) FROM t",
		},
	}

	r := newTestRewriter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ReplaceAggFields(tt.sql, tt.aggs))
		})
	}
}

func TestReplaceFields(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		fields map[string]string
		exact  bool
		want   string
	}{
		{
			name: "every clause",
			sql:  "SELECT dept, sum(pv) AS pv FROM t WHERE dept = 'a' AND dt >= '2024-01-01' GROUP BY dept HAVING sum(pv) > 10 ORDER BY sum(pv) DESC",
			fields: map[string]string{
				"dept": "department",
				"pv":   "page_views",
				"dt":   "数据日期",
			},
			exact: true,
			want:  "SELECT department, sum(page_views) AS page_views FROM t WHERE department = 'a' AND 数据日期 >= '2024-01-01' GROUP BY department HAVING sum(page_views) > 10 ORDER BY sum(page_views) DESC",
		},
		{
			name:   "set operation branches and order by",
			sql:    "SELECT pv FROM t1 UNION ALL SELECT pv FROM t2 ORDER BY pv",
			fields: map[string]string{"pv": "page_views"},
			exact:  true,
			want:   "SELECT page_views FROM t1 UNION ALL SELECT page_views FROM t2 ORDER BY page_views",
		},
		{
			name:   "join condition and joined sub-select",
			sql:    "SELECT a.pv FROM t a JOIN (SELECT pv, uid FROM u) b ON a.uid = b.uid",
			fields: map[string]string{"pv": "page_views", "uid": "user_id"},
			exact:  true,
			want:   "SELECT a.page_views FROM t AS a JOIN (SELECT page_views, user_id FROM u) AS b ON a.user_id = b.user_id",
		},
		{
			name:   "derived table",
			sql:    "SELECT pv FROM (SELECT pv FROM t) s",
			fields: map[string]string{"pv": "page_views"},
			exact:  true,
			want:   "SELECT page_views FROM (SELECT page_views FROM t) AS s",
		},
		{
			name:   "non-exact containment",
			sql:    "SELECT 访问次数 FROM t WHERE 部门名称 = 'x'",
			fields: map[string]string{"访问次数": "pv", "部门": "dept"},
			want:   "SELECT pv FROM t WHERE dept = 'x'",
		},
		{
			name:   "exact ignores near keys",
			sql:    "SELECT 访问次数 FROM t WHERE 部门名称 = 'x'",
			fields: map[string]string{"访问次数": "pv", "部门": "dept"},
			exact:  true,
			want:   "SELECT pv FROM t WHERE 部门名称 = 'x'",
		},
		{
			name:   "non-exact similarity",
			sql:    "SELECT amout, zzz FROM t",
			fields: map[string]string{"amount": "revenue"},
			want:   "SELECT revenue, zzz FROM t",
		},
		{
			name:   "alias that is a key",
			sql:    "SELECT sum(x) AS pv FROM t",
			fields: map[string]string{"pv": "page_views"},
			exact:  true,
			want:   "SELECT sum(x) AS page_views FROM t",
		},
	}

	r := newTestRewriter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ReplaceFields(tt.sql, tt.fields, tt.exact))
		})
	}
}
