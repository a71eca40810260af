package tag

import "sort"

// Chain groups the TAGs sharing one ID.
type Chain struct {
	ID   string `json:"id"`
	Spec []Tag  `json:"spec,omitempty"`
	Test []Tag  `json:"test,omitempty"`
	Code []Tag  `json:"code,omitempty"`
	Doc  []Tag  `json:"doc,omitempty"`
}

// Has reports whether the chain contains at least one tag of category c.
func (c Chain) Has(cat Category) bool {
	return len(c.tags(cat)) > 0
}

// Complete reports whether the chain links SPEC, TEST and CODE.
func (c Chain) Complete() bool {
	return c.Has(Spec) && c.Has(Test) && c.Has(Code)
}

// Missing lists the categories absent from the chain among SPEC, TEST and CODE.
func (c Chain) Missing() []Category {
	var out []Category
	for _, cat := range []Category{Spec, Test, Code} {
		if !c.Has(cat) {
			out = append(out, cat)
		}
	}
	return out
}

func (c Chain) tags(cat Category) []Tag {
	switch cat {
	case Spec:
		return c.Spec
	case Test:
		return c.Test
	case Code:
		return c.Code
	case Doc:
		return c.Doc
	}
	return nil
}

// BuildChains groups tags by ID. Chains are sorted by ID.
func BuildChains(tags []Tag) []Chain {
	byID := make(map[string]*Chain)
	for _, t := range tags {
		c, ok := byID[t.ID]
		if !ok {
			c = &Chain{ID: t.ID}
			byID[t.ID] = c
		}
		switch t.Category {
		case Spec:
			c.Spec = append(c.Spec, t)
		case Test:
			c.Test = append(c.Test, t)
		case Code:
			c.Code = append(c.Code, t)
		case Doc:
			c.Doc = append(c.Doc, t)
		}
	}

	chains := make([]Chain, 0, len(byID))
	for _, c := range byID {
		chains = append(chains, *c)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i].ID < chains[j].ID })
	return chains
}

// Issue is one validation finding.
type Issue struct {
	ID      string     `json:"id"`
	Kind    string     `json:"kind"`
	Message string     `json:"message"`
	Missing []Category `json:"missing,omitempty"`
	Tags    []Tag      `json:"tags,omitempty"`
}

// Issue kinds.
const (
	KindOrphan     = "orphan"
	KindIncomplete = "incomplete"
	KindDuplicate  = "duplicate"
)

// Report is the result of Validate.
type Report struct {
	Tags       int     `json:"tags"`
	Chains     int     `json:"chains"`
	Complete   int     `json:"complete"`
	Orphans    []Issue `json:"orphans,omitempty"`
	Incomplete []Issue `json:"incomplete,omitempty"`
	Duplicates []Issue `json:"duplicates,omitempty"`
}

// OK reports whether no issues were found.
func (r Report) OK() bool {
	return len(r.Orphans) == 0 && len(r.Incomplete) == 0 && len(r.Duplicates) == 0
}

// Issues returns every finding in the report.
func (r Report) Issues() []Issue {
	out := make([]Issue, 0, len(r.Orphans)+len(r.Incomplete)+len(r.Duplicates))
	out = append(out, r.Orphans...)
	out = append(out, r.Incomplete...)
	return append(out, r.Duplicates...)
}

// Validate checks traceability. CODE or TEST tags without a SPEC are orphans;
// a SPEC missing TEST or CODE is incomplete; an ID with more than one SPEC
// tag is a duplicate definition.
func Validate(tags []Tag) Report {
	chains := BuildChains(tags)
	r := Report{Tags: len(tags), Chains: len(chains)}

	for _, c := range chains {
		if !c.Has(Spec) {
			if c.Has(Code) || c.Has(Test) {
				r.Orphans = append(r.Orphans, Issue{
					ID:      c.ID,
					Kind:    KindOrphan,
					Message: "no @SPEC:" + c.ID + " for tagged tests or code",
					Missing: []Category{Spec},
					Tags:    append(append([]Tag(nil), c.Test...), c.Code...),
				})
			}
			continue
		}

		if len(c.Spec) > 1 {
			r.Duplicates = append(r.Duplicates, Issue{
				ID:      c.ID,
				Kind:    KindDuplicate,
				Message: "@SPEC:" + c.ID + " is defined more than once",
				Tags:    c.Spec,
			})
		}

		if missing := c.Missing(); len(missing) > 0 {
			r.Incomplete = append(r.Incomplete, Issue{
				ID:      c.ID,
				Kind:    KindIncomplete,
				Message: "@SPEC:" + c.ID + " has no linked " + joinCategories(missing),
				Missing: missing,
				Tags:    c.Spec,
			})
			continue
		}
		r.Complete++
	}
	return r
}

func joinCategories(cats []Category) string {
	s := ""
	for i, c := range cats {
		if i > 0 {
			s += " or "
		}
		s += string(c)
	}
	return s
}
