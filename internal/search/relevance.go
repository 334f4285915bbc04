// Package search builds relevance-ranked, paged read queries.
//
// Ranking is purely positional: a record ranks by where the query first
// occurs in its text, with a prefix match always ranking first. There is no
// tokenization and no index; matching is ASCII case-insensitive.
package search

import "strings"

// Page selects a window of an ordered result. Limit <= 0 means unbounded.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps negative values.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit < 0 {
		p.Limit = 0
	}
	return p
}

// Patterns returns the starts-with and contains patterns for query.
// The contains pattern carries one leading space so that matches are biased
// toward word boundaries.
func Patterns(query string) (startsWith, contains string) {
	q := strings.TrimSpace(query)
	return q, " " + q
}

// Relevance describes how to rank one kind of record.
type Relevance struct {
	// Columns are the SQL expressions searched; the best (lowest) offset wins.
	Columns []string
	// Tiebreak is the SQL expression ordering records of equal rank.
	Tiebreak string
	// Key is appended last so paging is deterministic.
	Key string
}

// Clause is the WHERE / ORDER BY / LIMIT tail of a ranked query.
type Clause struct {
	Where   string
	OrderBy string
	Limit   string
	Args    []any
}

// SQL returns the clause ready to follow a FROM.
func (c Clause) SQL() string {
	var b strings.Builder
	if c.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(c.Where)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(c.OrderBy)
	b.WriteString(" ")
	b.WriteString(c.Limit)
	return b.String()
}

// Build produces the ranked clause for query and page.
func (r Relevance) Build(query string, page Page) Clause {
	page = page.Normalize()
	startsWith, contains := Patterns(query)

	var c Clause
	order := make([]string, 0, 3)

	if startsWith != "" {
		filters := make([]string, 0, len(r.Columns))
		for _, col := range r.Columns {
			filters = append(filters,
				"(substr(lower("+col+"), 1, length(?)) = lower(?) OR instr(lower("+col+"), lower(?)) > 0)")
			c.Args = append(c.Args, startsWith, startsWith, contains)
		}
		c.Where = strings.Join(filters, " OR ")

		ranks := make([]string, 0, len(r.Columns))
		for _, col := range r.Columns {
			ranks = append(ranks, "coalesce(nullif(instr(lower(' ' || "+col+"), lower(?)), 0), 9223372036854775807)")
			c.Args = append(c.Args, contains)
		}
		if len(ranks) == 1 {
			order = append(order, ranks[0])
		} else {
			order = append(order, "min("+strings.Join(ranks, ", ")+")")
		}
	}

	order = append(order, r.Tiebreak+" COLLATE NOCASE")
	if r.Key != "" {
		order = append(order, r.Key)
	}
	c.OrderBy = strings.Join(order, ", ")

	limit := -1
	if page.Limit > 0 {
		limit = page.Limit
	}
	c.Limit = "LIMIT ? OFFSET ?"
	c.Args = append(c.Args, limit, page.Skip)

	return c
}
