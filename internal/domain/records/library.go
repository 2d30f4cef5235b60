package records

// Library is a set of id-keyed lookup tables. The engine receives one instead
// of following references between records, so skills that enhance spells
// and spells looked up on their own never form a cycle.
type Library struct {
	Characters map[string]*Character `json:"characters,omitempty" yaml:"characters,omitempty"`
	Units      map[string]*Unit      `json:"units,omitempty" yaml:"units,omitempty"`
	Skills     map[string]*Skill     `json:"skills,omitempty" yaml:"skills,omitempty"`
	MainSkills map[string]*MainSkill `json:"main_skills,omitempty" yaml:"main_skills,omitempty"`
	Spells     map[string]*Spell     `json:"spells,omitempty" yaml:"spells,omitempty"`
	Races      map[string]*Race      `json:"races,omitempty" yaml:"races,omitempty"`
	Artifacts  map[string]*Artifact  `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// NewLibrary returns a library with every table allocated
func NewLibrary() *Library {
	return &Library{
		Characters: make(map[string]*Character),
		Units:      make(map[string]*Unit),
		Skills:     make(map[string]*Skill),
		MainSkills: make(map[string]*MainSkill),
		Spells:     make(map[string]*Spell),
		Races:      make(map[string]*Race),
		Artifacts:  make(map[string]*Artifact),
	}
}

func (l *Library) Skill(id string) *Skill {
	if l == nil {
		return nil
	}
	return l.Skills[id]
}

func (l *Library) Spell(id string) *Spell {
	if l == nil {
		return nil
	}
	return l.Spells[id]
}

func (l *Library) Race(id string) *Race {
	if l == nil {
		return nil
	}
	return l.Races[id]
}

func (l *Library) Artifact(id string) *Artifact {
	if l == nil {
		return nil
	}
	return l.Artifacts[id]
}

func (l *Library) MainSkill(id string) *MainSkill {
	if l == nil {
		return nil
	}
	return l.MainSkills[id]
}

// Merge copies every entry of other into l, overwriting duplicates
func (l *Library) Merge(other *Library) {
	if other == nil {
		return
	}
	for k, v := range other.Characters {
		l.Characters[k] = v
	}
	for k, v := range other.Units {
		l.Units[k] = v
	}
	for k, v := range other.Skills {
		l.Skills[k] = v
	}
	for k, v := range other.MainSkills {
		l.MainSkills[k] = v
	}
	for k, v := range other.Spells {
		l.Spells[k] = v
	}
	for k, v := range other.Races {
		l.Races[k] = v
	}
	for k, v := range other.Artifacts {
		l.Artifacts[k] = v
	}
}
