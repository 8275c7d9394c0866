package data

// SetTestSkill registers a skill for cross-package tests.
func SetTestSkill(s *Skill) {
	if SkillTable == nil {
		SkillTable = make(map[string]*Skill, 8)
	}
	SkillTable[s.ID] = s
}

// DeleteTestSkill removes a single entry from SkillTable.
func DeleteTestSkill(id string) {
	delete(SkillTable, id)
}

// SetTestUnit registers a unit template for cross-package tests.
func SetTestUnit(u *UnitTemplate) {
	if UnitTable == nil {
		UnitTable = make(map[string]*UnitTemplate, 8)
	}
	UnitTable[u.ID] = u
}

// DeleteTestUnit removes a single entry from UnitTable.
func DeleteTestUnit(id string) {
	delete(UnitTable, id)
}

// MustLoad loads the embedded catalogs and panics on error. Intended for tests.
func MustLoad() {
	if err := Load(); err != nil {
		panic(err)
	}
}
