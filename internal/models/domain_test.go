package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomainTag(t *testing.T) {
	tag, ok := ParseDomainTag("  iot ")
	require.True(t, ok)
	assert.Equal(t, DomainIoT, tag)

	_, ok = ParseDomainTag("Quantum")
	assert.False(t, ok)
}

func TestDomainTagValid(t *testing.T) {
	assert.True(t, DomainBlockchain.Valid())
	assert.False(t, DomainTag("blockchain").Valid())
	assert.False(t, DomainTag("").Valid())
}

func TestNewDomainListSortsAndDeduplicates(t *testing.T) {
	list := NewDomainList(DomainWeb, DomainAI, DomainWeb, DomainData)
	assert.Equal(t, DomainList{DomainAI, DomainData, DomainWeb}, list)
	assert.True(t, list.Contains(DomainData))
	assert.False(t, list.Contains(DomainIoT))
}

func TestParseDomainListRejectsUnknown(t *testing.T) {
	list, err := ParseDomainList([]string{"web", "AI"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AI", "Web"}, list.Strings())

	_, err = ParseDomainList([]string{"web", "robotics"})
	assert.Error(t, err)
}

func TestDomainListScanValue(t *testing.T) {
	list := DomainList{DomainAI, DomainWeb}
	value, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"AI","Web"}`, value)

	var scanned DomainList
	require.NoError(t, scanned.Scan([]byte(`{AI,Web}`)))
	assert.Equal(t, list, scanned)
}

func TestAssignmentStatusTransitions(t *testing.T) {
	assert.True(t, AssignmentStatusPending.CanTransitionTo(AssignmentStatusReviewed))
	assert.True(t, AssignmentStatusReviewed.CanTransitionTo(AssignmentStatusReviewed))
	assert.False(t, AssignmentStatusReviewed.CanTransitionTo(AssignmentStatusPending))
	assert.False(t, AssignmentStatus("archived").Valid())
}
