package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck/database"
)

func TestInterpretCreateJob(t *testing.T) {
	i := NewInterpreter()

	resp := i.Interpret("Add Google interview, $150k, React/Node, fully remote")
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	require.Equal(t, IntentCreateJob, resp.Data.Intent)

	entities := resp.Data.Entities
	assert.Equal(t, "Google", entities.Company)
	assert.Equal(t, "$150k", entities.Salary)
	assert.Contains(t, entities.TechStack, "React")
	assert.Contains(t, entities.TechStack, "Node")
	assert.Equal(t, "remote", entities.WorkMode)
	assert.Equal(t, string(database.StatusInterviewObtained), entities.Status)

	assert.Contains(t, resp.Message, "Google")
	assert.Contains(t, resp.Message, "$150k")
}

func TestInterpretCreateJobUnknownCompany(t *testing.T) {
	i := NewInterpreter()

	// "add" never directly precedes a company token here.
	resp := i.Interpret("I want a new job interview entry please")
	if resp.Data != nil {
		assert.NotEqual(t, IntentCreateJob, resp.Data.Intent)
	}

	resp = i.Interpret("job interview to add: $90k")
	require.NotNil(t, resp.Data)
	require.Equal(t, IntentCreateJob, resp.Data.Intent)
	assert.Equal(t, "Unknown Company", resp.Data.Entities.Company)
}

func TestInterpretUpdateStatus(t *testing.T) {
	i := NewInterpreter()

	resp := i.Interpret("Move Microsoft to Accepted")
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, IntentUpdateStatus, resp.Data.Intent)
	assert.Equal(t, "Microsoft", resp.Data.Entities.Company)
	assert.Equal(t, "accepted", resp.Data.Entities.Status)
}

func TestInterpretUpdateStatusNormalizesPhrase(t *testing.T) {
	i := NewInterpreter()

	resp := i.Interpret("move Stripe to In   Process")
	require.NotNil(t, resp.Data)
	assert.Equal(t, "in_process", resp.Data.Entities.Status)

	resp = i.Interpret("move Stripe to interview obtained")
	require.NotNil(t, resp.Data)
	assert.Equal(t, "interview_obtained", resp.Data.Entities.Status)
}

func TestInterpretUpdateStatusAsksForClarification(t *testing.T) {
	i := NewInterpreter()

	resp := i.Interpret("update something")
	require.True(t, resp.Success)
	assert.Nil(t, resp.Data, "unparseable move must emit no mutation payload")
	assert.Contains(t, resp.Message, "Move Google to Accepted")
}

func TestInterpretQuerySalaryThreshold(t *testing.T) {
	i := NewInterpreter()

	resp := i.Interpret("Show all jobs paying over $100k")
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, IntentQuery, resp.Data.Intent)
	assert.Equal(t, "100", resp.Data.Entities.Salary)
	assert.Contains(t, resp.Message, "over $100k")
}

func TestInterpretQueryStatusSummaryUsesCounts(t *testing.T) {
	i := NewInterpreter()

	counts := map[database.Status]int{
		database.StatusInterviewObtained: 2,
		database.StatusInProcess:         1,
		database.StatusAccepted:          1,
		database.StatusRejected:          0,
	}
	resp := i.InterpretWithCounts("show my applications", counts)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, IntentQuery, resp.Data.Intent)
	assert.Contains(t, resp.Message, "Interview Obtained: 2")
	assert.Contains(t, resp.Message, "Rejected: 0")
}

func TestInterpretAddNote(t *testing.T) {
	i := NewInterpreter()

	resp := i.Interpret("Add note to Amazon: great culture vibes")
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, IntentAddNote, resp.Data.Intent)
	assert.Equal(t, "Amazon", resp.Data.Entities.Company)
	assert.Equal(t, "great culture vibes", resp.Data.Entities.Note)
}

func TestInterpretAddNoteClarification(t *testing.T) {
	i := NewInterpreter()

	resp := i.Interpret("note this down somewhere")
	require.True(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Contains(t, resp.Message, "Add note to Google")
}

func TestInterpretFallsBackToHelp(t *testing.T) {
	i := NewInterpreter()

	for _, message := range []string{"hello", "what can you do?", ""} {
		resp := i.Interpret(message)
		require.True(t, resp.Success)
		assert.Nil(t, resp.Data)
		assert.Contains(t, resp.Message, "I can help you with")
	}
}

func TestInterpretFirstMatchWins(t *testing.T) {
	i := NewInterpreter()

	// Satisfies both the create-job and the query triggers; the earlier
	// rule must take it.
	resp := i.Interpret("add Stripe job and show me everything")
	require.NotNil(t, resp.Data)
	assert.Equal(t, IntentCreateJob, resp.Data.Intent)

	// "note" appears but "update" is an earlier rule.
	resp = i.Interpret("update my note for Stripe")
	assert.Nil(t, resp.Data, "move clarification, not add_note, must handle this")
	assert.Contains(t, resp.Message, "which company to move")
}

func TestInterpretIsCaseInsensitive(t *testing.T) {
	i := NewInterpreter()

	resp := i.Interpret("MOVE NETFLIX TO REJECTED")
	require.NotNil(t, resp.Data)
	assert.Equal(t, IntentUpdateStatus, resp.Data.Intent)
	assert.Equal(t, "NETFLIX", resp.Data.Entities.Company)
	assert.Equal(t, "rejected", resp.Data.Entities.Status)
}
