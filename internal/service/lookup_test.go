package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupExact(t *testing.T) {
	l := DefaultSpecialtyLookup()
	assert.Equal(t, []string{"Cardiologist", "General Physician", "Pulmonologist"}, l.Lookup("  Chest Pain "))
	assert.Empty(t, l.Lookup("pain in my chest"))
	assert.NotNil(t, l.Lookup("unknown"))
}

func TestLookupFuzzy(t *testing.T) {
	l := DefaultSpecialtyLookup()

	// 精确命中时不再做子串匹配
	assert.Equal(t, []string{"Neurologist", "General Physician"}, l.LookupFuzzy("headache"))

	// 短语包含表项：按表顺序合并并去重
	assert.Equal(t,
		[]string{"General Physician", "Infectious Disease Specialist", "Neurologist"},
		l.LookupFuzzy("mild fever and headache"))

	// 表项包含短语
	assert.Equal(t, []string{"ENT Specialist", "General Physician"}, l.LookupFuzzy("throat"))

	assert.Empty(t, l.LookupFuzzy("xyzzy"))
	assert.Empty(t, l.LookupFuzzy("   "))
}

func TestLookupIsolatedFromCaller(t *testing.T) {
	l := NewSpecialtyLookup([]SymptomSpecialties{{Symptom: "Fever", Specialties: []string{"A"}}, {Symptom: "fever", Specialties: []string{"B"}}})
	got := l.Lookup("fever")
	assert.Equal(t, []string{"A"}, got)
	got[0] = "mutated"
	assert.Equal(t, []string{"A"}, l.Lookup("fever"))
}
