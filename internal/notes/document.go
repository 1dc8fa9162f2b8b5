// Package notes parses raw shift-note text into a structured document, or
// reports precise format violations when the text does not follow the
// heading / timestamp / level-code / details layout.
package notes

// Document is a fully validated notes file. It is only produced when the
// lint report is clean; partial documents are never handed downstream.
type Document struct {
	Participant string
	Entries     []Entry
}

// Entry is one timestamped log entry.
type Entry struct {
	Timestamp string   // HH:MM, zero-padded
	Level     string   // level code from the line after the timestamp
	Details   []string // non-blank detail lines, source order
	Line      int      // line number of the timestamp line
}

// Rule identifies a lint rule.
type Rule string

const (
	RuleEntryBeforeHeading Rule = "entry-before-heading"
	RuleTextBeforeHeading  Rule = "text-before-heading"
	RuleDuplicateHeading   Rule = "duplicate-heading"
	RuleMissingLevel       Rule = "missing-level"
	RuleLevelWithoutEntry  Rule = "level-without-timestamp"
	RuleStrayText          Rule = "stray-text"
	RuleEmptyFile          Rule = "empty-file"
)

// Violation is one detected format problem.
type Violation struct {
	Line    int
	Rule    Rule
	Message string
}

// Warning is a non-fatal finding: the file still lints clean, but the note
// taker probably wants to know.
type Warning struct {
	Line    int
	Message string
}

// Report is the outcome of linting one notes file. OK is true iff there are
// zero violations; warnings never affect OK.
type Report struct {
	OK         bool
	Violations []Violation
	Warnings   []Warning
}
