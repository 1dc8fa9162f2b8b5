package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validNotes = `### Jake

09:00 Woke up
l8

10:00 Had breakfast
l7
Ate cereal.

19:15 Evening walk
lx
Around the block.
Back by 19:40.
`

func TestParse_ValidFile(t *testing.T) {
	doc, report := Parse(validNotes)
	require.True(t, report.OK)
	require.NotNil(t, doc)
	assert.Empty(t, report.Violations)
	assert.Empty(t, report.Warnings)

	assert.Equal(t, "Jake", doc.Participant)
	require.Len(t, doc.Entries, 3)

	assert.Equal(t, "09:00", doc.Entries[0].Timestamp)
	assert.Equal(t, "l8", doc.Entries[0].Level)
	assert.Empty(t, doc.Entries[0].Details)

	assert.Equal(t, "10:00", doc.Entries[1].Timestamp)
	assert.Equal(t, "l7", doc.Entries[1].Level)
	assert.Equal(t, []string{"Ate cereal."}, doc.Entries[1].Details)

	assert.Equal(t, "19:15", doc.Entries[2].Timestamp)
	assert.Equal(t, "lx", doc.Entries[2].Level)
	assert.Equal(t, []string{"Around the block.", "Back by 19:40."}, doc.Entries[2].Details)
}

func TestParse_HeadingWithNoEntriesIsValid(t *testing.T) {
	doc, report := Parse("### Sarah\n")
	require.True(t, report.OK)
	require.NotNil(t, doc)
	assert.Equal(t, "Sarah", doc.Participant)
	assert.Empty(t, doc.Entries)
}

func TestParse_MissingLevelCode(t *testing.T) {
	t.Run("timestamp follows immediately", func(t *testing.T) {
		doc, report := Parse("### Jake\n\n09:00 Woke up\n10:00 Had breakfast\nl7\n")
		assert.Nil(t, doc)
		require.False(t, report.OK)
		require.Len(t, report.Violations, 1)
		v := report.Violations[0]
		assert.Equal(t, RuleMissingLevel, v.Rule)
		assert.Equal(t, 3, v.Line) // the dangling entry's timestamp line
	})

	t.Run("blank line intervenes", func(t *testing.T) {
		doc, report := Parse("### Jake\n\n09:00 Woke up\n\nl8\nStayed in bed.\n")
		assert.Nil(t, doc)
		require.False(t, report.OK)
		// Exactly one violation: the blank line. The level code after it
		// still attaches, so nothing downstream is misread.
		require.Len(t, report.Violations, 1)
		assert.Equal(t, RuleMissingLevel, report.Violations[0].Rule)
		assert.Equal(t, 3, report.Violations[0].Line)
	})

	t.Run("file ends on timestamp", func(t *testing.T) {
		doc, report := Parse("### Jake\n\n09:00 Woke up\n")
		assert.Nil(t, doc)
		require.False(t, report.OK)
		require.Len(t, report.Violations, 1)
		assert.Equal(t, RuleMissingLevel, report.Violations[0].Rule)
		assert.Equal(t, 3, report.Violations[0].Line)
	})
}

func TestParse_EntryBeforeHeading(t *testing.T) {
	doc, report := Parse("09:00 Woke up\nl8\n")
	assert.Nil(t, doc)
	require.False(t, report.OK)
	require.Len(t, report.Violations, 2)
	assert.Equal(t, RuleEntryBeforeHeading, report.Violations[0].Rule)
	assert.Equal(t, 1, report.Violations[0].Line)
	assert.Equal(t, RuleTextBeforeHeading, report.Violations[1].Rule)
}

func TestParse_DuplicateHeadingContinues(t *testing.T) {
	input := `### Jake

09:00 Woke up
l8

### Sarah

10:00 Had breakfast
l7
`
	doc, report := Parse(input)
	assert.Nil(t, doc)
	require.False(t, report.OK)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, RuleDuplicateHeading, report.Violations[0].Rule)
	assert.Equal(t, 6, report.Violations[0].Line)

	// Both duplicates keep being reported.
	_, report = Parse(input + "\n### Again\n")
	require.Len(t, report.Violations, 2)
	assert.Equal(t, RuleDuplicateHeading, report.Violations[1].Rule)
}

func TestParse_BlankLinesInsideDetails(t *testing.T) {
	input := `### Jake

09:00 Morning routine
l6
Brushed teeth.

Made coffee.

Read the paper.

10:30 Out
l8
`
	doc, report := Parse(input)
	require.True(t, report.OK)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, []string{"Brushed teeth.", "Made coffee.", "Read the paper."},
		doc.Entries[0].Details)
}

func TestParse_LevelCodesAreTextInsideDetails(t *testing.T) {
	doc, report := Parse("### Jake\n\n09:00 Notes\nl8\nl7\nmore text\n")
	require.True(t, report.OK)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "l8", doc.Entries[0].Level)
	assert.Equal(t, []string{"l7", "more text"}, doc.Entries[0].Details)
}

func TestParse_StrayTextAndOrphanLevel(t *testing.T) {
	doc, report := Parse("### Jake\n\nloose words here\nl8\n")
	assert.Nil(t, doc)
	require.Len(t, report.Violations, 2)
	assert.Equal(t, RuleStrayText, report.Violations[0].Rule)
	assert.Equal(t, RuleLevelWithoutEntry, report.Violations[1].Rule)
}

func TestParse_EmptyFile(t *testing.T) {
	for _, raw := range []string{"", "\n\n  \n"} {
		doc, report := Parse(raw)
		assert.Nil(t, doc)
		require.False(t, report.OK)
		require.Len(t, report.Violations, 1)
		assert.Equal(t, RuleEmptyFile, report.Violations[0].Rule)
	}
}

func TestParse_AmbiguousTimestampWarns(t *testing.T) {
	doc, report := Parse("### Jake\n\n9:00 Woke up\nl8\n")
	require.True(t, report.OK, "warnings must not fail the lint")
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 3, report.Warnings[0].Line)
	assert.Contains(t, report.Warnings[0].Message, "09:00")
	// The stored timestamp is normalised.
	assert.Equal(t, "09:00", doc.Entries[0].Timestamp)
}

func TestParse_NonChronologicalWarns(t *testing.T) {
	doc, report := Parse("### Jake\n\n10:00 Breakfast\nl7\n\n09:00 Woke up\nl8\n")
	require.True(t, report.OK)
	require.Len(t, doc.Entries, 2)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Message, "non-chronological")
}

func TestTransition_IsPure(t *testing.T) {
	// Same inputs, same outputs, no hidden state.
	ln := classify(5, "09:00 Woke up")
	for i := 0; i < 3; i++ {
		next, eff := transition(awaitEntry, ln)
		assert.Equal(t, awaitLevel, next)
		assert.True(t, eff.openEntry)
		assert.Empty(t, eff.rule)
	}
}

func TestClassify_Priority(t *testing.T) {
	cases := []struct {
		in   string
		want lineClass
	}{
		{"### Jake", classHeading},
		{"# Jake", classHeading},
		{"09:00 Woke up", classTimestamp},
		{"09:00", classTimestamp},
		{"9:15 nap", classTimestamp},
		{"l8", classLevel},
		{"lx", classLevel},
		{"l_", classLevel},
		{"j1", classLevel},
		{"just some text", classText},
		{"#### Four hashes", classText},
		{"", classBlank},
		{"   ", classBlank},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classify(1, c.in).class, "input %q", c.in)
	}
}
