// Package connector attributes release-note lines to Trino connectors.
package connector

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/paulstuart/trinover/pkg/model"
)

// known is checked in order; the first match wins.
var known = []string{
	"bigquery", "clickhouse", "delta lake", "elasticsearch", "hive", "iceberg",
	"jdbc", "kafka", "mongodb", "mysql", "oracle", "postgresql", "redis",
	"redshift", "sqlserver", "snowflake", "phoenix", "pinot", "mariadb",
	"cassandra", "accumulo", "druid", "kudu", "memory", "thrift",
}

var displayNames = map[string]string{
	"bigquery":      "BigQuery",
	"clickhouse":    "ClickHouse",
	"delta lake":    "Delta Lake",
	"elasticsearch": "Elasticsearch",
	"sqlserver":     "SQL Server",
}

var title = cases.Title(language.English)

// Identify returns the connector a change line refers to, or model.General.
func Identify(text string) string {
	lower := strings.ToLower(text)
	for _, name := range known {
		if strings.Contains(lower, name) || strings.Contains(lower, strings.ReplaceAll(name, " ", "")) {
			return DisplayName(name)
		}
	}

	// "Fix ... in the Foo connector" style mentions.
	if before, _, found := strings.Cut(lower, " connector"); found {
		words := strings.Fields(before)
		if len(words) > 0 {
			last := words[len(words)-1]
			if len([]rune(last)) > 2 && strings.IndexFunc(last, unicode.IsLetter) >= 0 {
				return capitalize(last)
			}
		}
	}
	return model.General
}

// DisplayName maps a lower-case known connector key to its canonical spelling.
func DisplayName(name string) string {
	if d, ok := displayNames[name]; ok {
		return d
	}
	return title.String(name)
}

// FromHeading cleans a "BigQuery connector" section heading down to "BigQuery".
func FromHeading(heading string) string {
	var b strings.Builder
	rest := heading
	for {
		i := strings.Index(strings.ToLower(rest), "connector")
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		rest = rest[i+len("connector"):]
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func capitalize(word string) string {
	r := []rune(strings.ToLower(word))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
