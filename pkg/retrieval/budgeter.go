package retrieval

import "strings"

const (
	// CharsPerToken is the fixed token-to-character conversion ratio.
	CharsPerToken = 4

	defaultSeparator  = "\n\n"
	defaultBudgetChar = 8000
)

// BudgetItem is one packable piece of text. Score is reserved for
// budget-aware reordering; the packer follows input order.
type BudgetItem struct {
	ID    string
	Text  string
	Score float64
	Meta  map[string]string
}

// BudgeterOptions controls packing. BudgetTokens takes precedence over
// BudgetChars; with neither set the budget is 8000 characters.
type BudgeterOptions struct {
	BudgetTokens int
	BudgetChars  int
	Separator    string
	// IncludeIDs prefixes each item with a "[memory:<id>]" header.
	// Nil defaults to true.
	IncludeIDs *bool
}

// PackResult reports the packed text and usage stats.
type PackResult struct {
	Packed  string
	Used    int
	Dropped int
}

// Pack greedily selects a prefix of items that fits the budget. The
// first item that does not fit stops packing entirely, preserving the
// ranked order's priority.
func Pack(items []BudgetItem, opts BudgeterOptions) PackResult {
	budget := defaultBudgetChar
	if opts.BudgetTokens > 0 {
		budget = opts.BudgetTokens * CharsPerToken
	} else if opts.BudgetChars > 0 {
		budget = opts.BudgetChars
	}

	separator := opts.Separator
	if separator == "" {
		separator = defaultSeparator
	}
	includeIDs := true
	if opts.IncludeIDs != nil {
		includeIDs = *opts.IncludeIDs
	}

	used := 0
	var parts []string
	for _, item := range items {
		line := item.Text
		if includeIDs {
			line = "[memory:" + item.ID + "]\n" + item.Text
		}
		need := len(line)
		if len(parts) > 0 {
			need += len(separator)
		}
		if used+need > budget {
			break
		}
		parts = append(parts, line)
		used += need
	}

	return PackResult{
		Packed:  strings.Join(parts, separator),
		Used:    used,
		Dropped: len(items) - len(parts),
	}
}

// EstimateTokens approximates the token count of text at the fixed
// characters-per-token ratio, rounding up.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + CharsPerToken - 1) / CharsPerToken
}
