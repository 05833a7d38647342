package analysis

import (
	"fmt"
	"strings"
)

// Categorizer names referenced by category selections.
const (
	CatIDIncl  = "catid_incl"
	CatIDFourE = "catid_4e"
	CatIDFourM = "catid_4mu"
	CatID2E2M  = "catid_2e2mu"
)

// Category names and ids.
const (
	CatIncl    = "cat_incl"
	Cat4e      = "4e"
	Cat4mu     = "4mu"
	Cat2e2mu   = "2e2mu"
	CatInclID  = 1
	Cat4eID    = 10
	Cat4muID   = 20
	Cat2e2muID = 30
)

// AddAllCategories registers the inclusive and the lepton-flavor categories.
func AddAllCategories(c *Config) error {
	return CallOnce(c, "add_all_categories", func(c *Config) error {
		if err := AddInclusive(c); err != nil {
			return err
		}
		return AddLeptonCategories(c)
	})
}

// AddInclusive registers cat_incl.
func AddInclusive(c *Config) error {
	return CallOnce(c, "add_incl_cat", func(c *Config) error {
		return c.AddCategory(Category{
			Name: CatIncl, ID: CatInclID, Label: "Inclusive", Selection: []string{CatIDIncl},
		})
	})
}

// AddLeptonCategories registers 4e, 4mu and 2e2mu.
func AddLeptonCategories(c *Config) error {
	return CallOnce(c, "add_lepton_categories", func(c *Config) error {
		for _, cat := range []Category{
			{Name: Cat4e, ID: Cat4eID, Label: "4 Electrons", Selection: []string{CatIDFourE}},
			{Name: Cat4mu, ID: Cat4muID, Label: "4 Muons", Selection: []string{CatIDFourM}},
			{Name: Cat2e2mu, ID: Cat2e2muID, Label: "2 Electrons 2 Muons", Selection: []string{CatID2E2M}},
		} {
			if err := c.AddCategory(cat); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddVariables registers the analysis observables.
func AddVariables(c *Config) error {
	return CallOnce(c, "add_variables", addVariables)
}

// AddCombinedCategories combines the inclusive category with each flavor
// category, e.g. cat_incl__4e with id 11.
func AddCombinedCategories(c *Config) error {
	return CallOnce(c, "add_combined_categories", func(c *Config) error {
		_, err := CreateCombinations(c, []Group{
			{Name: "incl", Categories: []string{CatIncl}},
			{Name: "channel", Categories: []string{Cat4e, Cat4mu, Cat2e2mu}},
		})
		return err
	})
}

// Group is a named set of categories taking part in combinations.
type Group struct {
	Name       string
	Categories []string
}

// CreateCombinations adds one combined category per element of the cartesian
// product of every subset of at least two groups, in group order. A combined
// category has the summed id, the "__"-joined name, the newline-joined label
// and the concatenated selections, and becomes a child of its constituents.
// Existing names are skipped. It returns the number of categories added.
func CreateCombinations(c *Config, groups []Group) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resolved := make([][]*Category, len(groups))
	for i, g := range groups {
		for _, name := range g.Categories {
			cat, ok := c.catByName[name]
			if !ok {
				return 0, fmt.Errorf("%w: %q in group %q", ErrUnknownCategory, name, g.Name)
			}
			resolved[i] = append(resolved[i], cat)
		}
	}

	added := 0
	for r := 2; r <= len(groups); r++ {
		for _, subset := range subsets(len(groups), r) {
			lists := make([][]*Category, len(subset))
			for i, g := range subset {
				lists[i] = resolved[g]
			}
			for _, combo := range product(lists) {
				ok, err := c.addCombinationLocked(combo)
				if err != nil {
					return added, err
				}
				if ok {
					added++
				}
			}
		}
	}
	return added, nil
}

func (c *Config) addCombinationLocked(combo []*Category) (bool, error) {
	names := make([]string, len(combo))
	labels := make([]string, len(combo))
	cat := &Category{}
	for i, part := range combo {
		names[i] = part.Name
		labels[i] = part.Label
		cat.ID += part.ID
		cat.Selection = append(cat.Selection, part.Selection...)
	}
	cat.Name = strings.Join(names, "__")
	cat.Label = strings.Join(labels, "\n")
	if _, ok := c.catByName[cat.Name]; ok {
		return false, nil
	}
	if err := c.addCategoryLocked(cat); err != nil {
		return false, err
	}
	for _, part := range combo {
		part.Children = append(part.Children, cat.Name)
	}
	return true, nil
}

// subsets returns the r-combinations of 0..n-1 in lexicographic order.
func subsets(n, r int) [][]int {
	var out [][]int
	cur := make([]int, 0, r)
	var rec func(start int)
	rec = func(start int) {
		if len(cur) == r {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for i := start; i < n; i++ {
			cur = append(cur, i)
			rec(i + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0)
	return out
}

// product returns the cartesian product of lists, first list outermost.
func product(lists [][]*Category) [][]*Category {
	out := [][]*Category{nil}
	for _, list := range lists {
		next := make([][]*Category, 0, len(out)*len(list))
		for _, prefix := range out {
			for _, item := range list {
				combo := append(append([]*Category(nil), prefix...), item)
				next = append(next, combo)
			}
		}
		out = next
	}
	return out
}
