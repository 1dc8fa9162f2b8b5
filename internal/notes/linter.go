package notes

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`^#{1,3}\s+([A-Za-z]+)\s*$`)
	timestampRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\s+.*)?$`)
	levelRe     = regexp.MustCompile(`^[a-z](?:\d{1,2}|[x_])$`)
)

type state int

const (
	awaitHeading state = iota
	awaitEntry
	awaitLevel
	inDetails
)

type lineClass int

const (
	classBlank lineClass = iota
	classHeading
	classTimestamp
	classLevel
	classText
)

// line is one classified source line. Classification priority: heading,
// timestamp, level code, plain text.
type line struct {
	num       int
	text      string // trimmed
	class     lineClass
	name      string // participant name, classHeading only
	clock     string // zero-padded HH:MM, classTimestamp only
	ambiguous bool   // single-digit hour
}

func classify(num int, raw string) line {
	text := strings.TrimSpace(raw)
	ln := line{num: num, text: text}

	if text == "" {
		ln.class = classBlank
		return ln
	}
	if m := headingRe.FindStringSubmatch(text); m != nil {
		ln.class = classHeading
		ln.name = m[1]
		return ln
	}
	if m := timestampRe.FindStringSubmatch(text); m != nil {
		ln.class = classTimestamp
		hour := m[1]
		if len(hour) == 1 {
			ln.ambiguous = true
			hour = "0" + hour
		}
		ln.clock = hour + ":" + m[2]
		return ln
	}
	if levelRe.MatchString(text) {
		ln.class = classLevel
		return ln
	}
	ln.class = classText
	return ln
}

// effect describes what a single transition does to the document under
// construction. At most one violation per effect; the reprocess flag lets
// the driver re-dispatch the same line after abandoning a dangling entry.
type effect struct {
	setParticipant bool
	openEntry      bool
	attachLevel    bool
	appendDetail   bool
	closeEntry     bool
	dropEntry      bool
	reprocess      bool
	rule           Rule // zero value: no violation
	message        string
}

// transition is the pure state-machine step: (state, classified line) ->
// (next state, effect). It never touches the document itself.
func transition(st state, ln line) (state, effect) {
	switch st {
	case awaitHeading:
		switch ln.class {
		case classBlank:
			return st, effect{}
		case classHeading:
			return awaitEntry, effect{setParticipant: true}
		case classTimestamp:
			return st, effect{rule: RuleEntryBeforeHeading,
				message: fmt.Sprintf("entry %q before participant heading", ln.clock)}
		default:
			return st, effect{rule: RuleTextBeforeHeading,
				message: "file must start with a participant heading (e.g. '### Jake')"}
		}

	case awaitEntry:
		switch ln.class {
		case classBlank:
			return st, effect{}
		case classHeading:
			return st, effect{rule: RuleDuplicateHeading,
				message: fmt.Sprintf("duplicate participant heading %q", ln.name)}
		case classTimestamp:
			return awaitLevel, effect{openEntry: true}
		case classLevel:
			return st, effect{rule: RuleLevelWithoutEntry,
				message: fmt.Sprintf("level code %q without a preceding timestamp", ln.text)}
		default:
			return st, effect{rule: RuleStrayText,
				message: fmt.Sprintf("stray text outside any entry: %q", ln.text)}
		}

	case awaitLevel:
		switch ln.class {
		case classLevel:
			return inDetails, effect{attachLevel: true}
		case classBlank:
			// Keep waiting: the level code may still follow, so one blank
			// line is one violation and the entry survives.
			return st, effect{rule: RuleMissingLevel,
				message: "missing level code for this entry"}
		case classText:
			// Recover by treating the line as the first detail; the entry
			// stays level-less and the report is already failing.
			return inDetails, effect{appendDetail: true, rule: RuleMissingLevel,
				message: "missing level code for this entry"}
		default:
			// Timestamp or heading: abandon the dangling entry and let the
			// line be handled as if the entry had never opened.
			return awaitEntry, effect{dropEntry: true, reprocess: true, rule: RuleMissingLevel,
				message: "missing level code for this entry"}
		}

	default: // inDetails
		switch ln.class {
		case classBlank:
			// Blank lines do not terminate an entry.
			return st, effect{}
		case classHeading:
			return st, effect{rule: RuleDuplicateHeading,
				message: fmt.Sprintf("duplicate participant heading %q", ln.name)}
		case classTimestamp:
			return awaitLevel, effect{closeEntry: true, openEntry: true}
		default:
			// Level codes are just text inside a detail block.
			return st, effect{appendDetail: true}
		}
	}
}

// Parse lints raw note text and, when the report is clean, returns the
// structured document. The document is nil whenever Report.OK is false.
func Parse(raw string) (*Document, Report) {
	p := &parser{doc: &Document{}}

	rawLines := strings.Split(raw, "\n")
	for i, rl := range rawLines {
		ln := classify(i+1, rl)
		p.step(ln)
	}
	p.finish(len(rawLines))

	p.report.OK = len(p.report.Violations) == 0
	if !p.report.OK {
		return nil, p.report
	}
	return p.doc, p.report
}

type parser struct {
	st        state
	doc       *Document
	cur       *Entry
	report    Report
	lastClock string
	sawAny    bool
}

func (p *parser) step(ln line) {
	if ln.class != classBlank {
		p.sawAny = true
	}

	for {
		next, eff := p.apply(ln)
		p.st = next
		if !eff.reprocess {
			return
		}
	}
}

func (p *parser) apply(ln line) (state, effect) {
	next, eff := transition(p.st, ln)

	if eff.rule != "" {
		at := ln.num
		if eff.rule == RuleMissingLevel && p.cur != nil {
			at = p.cur.Line // the violation belongs to the dangling entry
		}
		p.report.Violations = append(p.report.Violations, Violation{
			Line:    at,
			Rule:    eff.rule,
			Message: eff.message,
		})
	}

	if eff.setParticipant {
		p.doc.Participant = ln.name
	}
	if eff.closeEntry && p.cur != nil {
		p.doc.Entries = append(p.doc.Entries, *p.cur)
		p.cur = nil
	}
	if eff.dropEntry {
		p.cur = nil
	}
	if eff.openEntry {
		p.warnTimestamp(ln)
		p.cur = &Entry{Timestamp: ln.clock, Line: ln.num}
	}
	if eff.attachLevel && p.cur != nil {
		p.cur.Level = ln.text
	}
	if eff.appendDetail && p.cur != nil {
		p.cur.Details = append(p.cur.Details, ln.text)
	}

	return next, eff
}

// warnTimestamp records the non-fatal findings the linter carries for every
// accepted timestamp: ambiguous 12-hour form and non-chronological order.
func (p *parser) warnTimestamp(ln line) {
	if ln.ambiguous {
		p.report.Warnings = append(p.report.Warnings, Warning{
			Line:    ln.num,
			Message: fmt.Sprintf("ambiguous 12-hour timestamp; use 24-hour form %q", ln.clock),
		})
	}
	if p.lastClock != "" && ln.clock < p.lastClock {
		p.report.Warnings = append(p.report.Warnings, Warning{
			Line:    ln.num,
			Message: fmt.Sprintf("non-chronological timestamp: %q is earlier than previous %q", ln.clock, p.lastClock),
		})
	}
	p.lastClock = ln.clock
}

func (p *parser) finish(lastLine int) {
	switch p.st {
	case awaitLevel:
		// End of file with a dangling entry: report it, never drop silently.
		at := lastLine
		if p.cur != nil {
			at = p.cur.Line
		}
		p.report.Violations = append(p.report.Violations, Violation{
			Line:    at,
			Rule:    RuleMissingLevel,
			Message: "file ends on a timestamp; level code is missing",
		})
		p.cur = nil
	case inDetails:
		if p.cur != nil {
			p.doc.Entries = append(p.doc.Entries, *p.cur)
			p.cur = nil
		}
	}

	if !p.sawAny {
		p.report.Violations = append(p.report.Violations, Violation{
			Line:    1,
			Rule:    RuleEmptyFile,
			Message: "file is empty",
		})
	}
}
