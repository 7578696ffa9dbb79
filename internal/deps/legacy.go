package deps

import "github.com/dusk-indust/depscope/internal/project"

// LegacyClass is one class entry in the original Java-only snapshot format.
// Name is the fully qualified class name; relation targets are fully
// qualified as well.
type LegacyClass struct {
	Name       string   `json:"name"`
	Package    string   `json:"package,omitempty"`
	FilePath   string   `json:"filePath,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Extends    string   `json:"extends,omitempty"`
	Implements []string `json:"implements,omitempty"`
	Imports    []string `json:"imports,omitempty"`
	Uses       []string `json:"uses,omitempty"`
}

// LegacySnapshot is the original single-language persisted shape, recognized
// by the presence of its "classes" array.
type LegacySnapshot struct {
	Project string        `json:"project,omitempty"`
	Classes []LegacyClass `json:"classes"`
}

// ToExtraction upgrades a legacy snapshot into the current intermediate
// representation so it can flow through the regular converter.
func (s *LegacySnapshot) ToExtraction() *Extraction {
	ext := &Extraction{
		Language: project.LangJava,
		Project:  s.Project,
	}

	for _, c := range s.Classes {
		kind := c.Kind
		if kind == "" {
			kind = "class"
		}
		sym := Symbol{
			ID:       c.Name,
			Title:    simpleName(c.Name),
			Kind:     kind,
			FilePath: c.FilePath,
		}
		if c.Extends != "" {
			sym.Relations = append(sym.Relations, Relation{Kind: RelationExtends, Target: c.Extends})
		}
		for _, iface := range c.Implements {
			sym.Relations = append(sym.Relations, Relation{Kind: RelationImplements, Target: iface})
		}
		for _, imp := range c.Imports {
			sym.Relations = append(sym.Relations, Relation{Kind: RelationImport, Target: imp})
		}
		for _, u := range c.Uses {
			sym.Relations = append(sym.Relations, Relation{Kind: RelationUses, Target: u})
		}
		ext.Symbols = append(ext.Symbols, sym)
	}
	return ext
}

// simpleName returns the last dotted segment of a qualified name.
func simpleName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}
	return qualified
}
