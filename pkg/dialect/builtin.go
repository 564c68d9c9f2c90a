package dialect

func init() {
	Register(ANSI)
	Register(MySQL)
	Register(Postgres)
	Register(DuckDB)
	Register(Databricks)
}

// standardAggregates are the aggregates every builtin dialect knows.
var standardAggregates = []string{
	"SUM", "COUNT", "AVG", "MIN", "MAX",
	"STDDEV", "STDDEV_POP", "STDDEV_SAMP",
	"VARIANCE", "VAR_POP", "VAR_SAMP",
	"ANY_VALUE", "ARRAY_AGG", "STRING_AGG",
	"PERCENTILE_CONT", "PERCENTILE_DISC", "MEDIAN",
}

// ANSI is the default dialect: double-quoted identifiers.
var ANSI = NewDialect("ansi").
	Aggregates(standardAggregates...).
	ReservedWords("user", "table", "column", "with", "index").
	Build()

// MySQL quotes identifiers with backticks.
var MySQL = NewDialect("mysql").
	Identifiers("`", "`", "``").
	Aggregates(standardAggregates...).
	Aggregates("GROUP_CONCAT", "BIT_AND", "BIT_OR", "BIT_XOR", "JSON_ARRAYAGG", "JSON_OBJECTAGG").
	ReservedWords(
		"add", "alter", "before", "change", "column", "condition", "database",
		"databases", "default", "delete", "div", "dual", "explain", "force",
		"index", "insert", "interval", "key", "keys", "kill", "match", "mod",
		"rank", "read", "regexp", "rlike", "schema", "show", "table", "to",
		"update", "usage", "values", "with", "write",
	).
	Build()

// Postgres is the PostgreSQL dialect.
var Postgres = NewDialect("postgres").
	Aggregates(standardAggregates...).
	Aggregates("BOOL_AND", "BOOL_OR", "BIT_AND", "BIT_OR", "JSON_AGG", "JSONB_AGG", "MODE").
	ReservedWords(
		"user", "table", "analyse", "analyze", "any", "array", "asymmetric",
		"authorization", "binary", "both", "check", "collate", "column",
		"constraint", "create", "current_catalog", "current_role",
		"current_schema", "current_user", "default", "deferrable", "do", "fetch",
		"for", "foreign", "freeze", "grant", "ilike", "initially", "into",
		"isnull", "lateral", "leading", "localtime", "localtimestamp", "natural",
		"notnull", "only", "overlaps", "placing", "primary", "references",
		"returning", "session_user", "similar", "some", "symmetric", "to",
		"trailing", "unique", "variadic", "verbose", "window", "with",
	).
	Build()

// DuckDB quotes like ANSI and knows the DuckDB aggregate library.
var DuckDB = NewDialect("duckdb").
	Aggregates(standardAggregates...).
	Aggregates(
		"LIST", "GROUP_CONCAT", "FIRST", "LAST", "ARBITRARY", "MODE",
		"QUANTILE", "QUANTILE_CONT", "QUANTILE_DISC",
		"APPROX_COUNT_DISTINCT", "APPROX_QUANTILE",
		"HISTOGRAM", "ENTROPY", "KURTOSIS", "SKEWNESS",
		"BIT_AND", "BIT_OR", "BIT_XOR", "BOOL_AND", "BOOL_OR",
		"CORR", "COVAR_POP", "COVAR_SAMP", "PRODUCT", "FSUM", "FAVG", "MAD",
	).
	ReservedWords("user", "table", "column", "with", "qualify", "pivot", "unpivot").
	Build()

// Databricks quotes identifiers with backticks.
var Databricks = NewDialect("databricks").
	Identifiers("`", "`", "``").
	Aggregates(standardAggregates...).
	Aggregates(
		"COLLECT_LIST", "COLLECT_SET", "APPROX_COUNT_DISTINCT", "APPROX_PERCENTILE",
		"BOOL_AND", "BOOL_OR", "BIT_AND", "BIT_OR", "BIT_XOR", "COUNT_IF",
		"FIRST", "LAST", "MAX_BY", "MIN_BY", "MODE", "PERCENTILE",
	).
	ReservedWords(
		"table", "column", "with", "qualify", "rlike", "regexp", "div",
		"semi", "anti", "lateral", "tablesample", "user",
	).
	Build()
