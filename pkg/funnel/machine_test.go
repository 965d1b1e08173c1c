package funnel

import (
	"testing"

	"product-advisor-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineStart(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")
	s.Criteria["material"] = "metal"

	step := m.Start(s)

	require.NotNil(t, step)
	assert.Equal(t, KeyProductType, step.Key)
	assert.Equal(t, KeyProductType, s.CurrentStep)
	assert.Empty(t, s.Criteria, "restart drops accumulated criteria")
}

func TestMachineStartIsIdempotent(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")

	first := m.Start(s)
	second := m.Start(s)

	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, KeyProductType, s.CurrentStep)
	assert.Empty(t, s.Criteria)
}

func TestMachineSelectionFlow(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")
	m.Start(s)

	answer, ok := m.Resolve(s, "grille")
	require.True(t, ok)
	require.True(t, answer.IsSelection())

	next := m.ApplySelection(s, answer)
	require.NotNil(t, next)
	assert.Equal(t, KeyLocation, next.Key)
	assert.Equal(t, "grille", s.Criteria[KeyProductType])
}

func TestMachineResolveByLabel(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")
	step := m.Start(s)

	// Typing the visible label works like pressing the button.
	label := step.Options[0].Label
	answer, ok := m.Resolve(s, label)
	require.True(t, ok)
	assert.Equal(t, step.Options[0].Value, answer.Selection.Value)
}

func TestMachineExtractionSkipsAnsweredSteps(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")
	m.Start(s)

	next := m.ApplyExtraction(s, map[string]string{
		KeyProductType: "grille",
		KeyMaterial:    "metal",
	})

	require.NotNil(t, next)
	assert.Equal(t, KeyLocation, next.Key, "jumps to the first pending step")
}

func TestMachineExtractionOverwrites(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")
	m.Start(s)
	s.Criteria[KeyMaterial] = "plastic"

	m.ApplyExtraction(s, map[string]string{KeyMaterial: "metal"})

	assert.Equal(t, "metal", s.Criteria[KeyMaterial])
}

func TestMachineCompletion(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")
	m.Start(s)

	next := m.ApplyExtraction(s, map[string]string{
		KeyProductType: "grille",
		KeyLocation:    "outdoor",
		KeyMaterial:    "metal",
		KeySizeGroup:   "small",
	})

	assert.Nil(t, next, "all steps answered")
	assert.Equal(t, "", s.CurrentStep)
}

func TestMachineBack(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")
	m.Start(s)
	m.ApplyExtraction(s, map[string]string{KeyProductType: "grille"})
	require.Equal(t, KeyLocation, s.CurrentStep)

	step := m.Back(s)

	require.NotNil(t, step)
	assert.Equal(t, KeyProductType, step.Key)
	_, has := s.Criteria[KeyProductType]
	assert.False(t, has, "previous answer is discarded so the step is asked again")
}

func TestMachineBackAtFirstStepRestarts(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")
	m.Start(s)
	s.Criteria[KeyMaterial] = "metal" // out-of-order leftover

	step := m.Back(s)

	require.NotNil(t, step)
	assert.Equal(t, KeyProductType, step.Key)
	assert.Empty(t, s.Criteria, "back at the first step is a full restart")
}

func TestMachineBackOutsideFunnelRestarts(t *testing.T) {
	m := NewMachine(DefaultVocabulary())
	s := store.NewSession("s1")

	step := m.Back(s)

	require.NotNil(t, step)
	assert.Equal(t, KeyProductType, step.Key)
}
