// Package analysis holds the analysis configuration: an append-only registry
// of tags, categories and variables shared by every chunk.
package analysis

import (
	"fmt"
	"sort"
	"sync"
)

// Category is one analysis category. An event belongs to a category when all
// categorizers named in Selection accept it.
type Category struct {
	Name      string
	ID        int
	Label     string
	Selection []string
	Children  []string
}

// IsLeaf reports whether the category has no children.
func (c Category) IsLeaf() bool { return len(c.Children) == 0 }

// Config is the registry. The zero value is not usable; call NewConfig.
type Config struct {
	Name string

	mu         sync.RWMutex
	tags       map[string]struct{}
	pending    map[string]chan struct{}
	categories []*Category
	catByName  map[string]*Category
	catByID    map[int]*Category
	variables  []*Variable
	varByName  map[string]*Variable
}

// NewConfig creates an empty registry.
func NewConfig(name string) *Config {
	return &Config{
		Name:      name,
		tags:      make(map[string]struct{}),
		pending:   make(map[string]chan struct{}),
		catByName: make(map[string]*Category),
		catByID:   make(map[int]*Category),
		varByName: make(map[string]*Variable),
	}
}

// HasTag reports whether tag was added.
func (c *Config) HasTag(tag string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tags[tag]
	return ok
}

// AddTag adds tag. Adding a tag twice is a no-op.
func (c *Config) AddTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = struct{}{}
}

// Tags returns all tags, sorted.
func (c *Config) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.tags))
	for t := range c.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// AddCategory registers a category.
func (c *Config) AddCategory(cat Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addCategoryLocked(&cat)
}

func (c *Config) addCategoryLocked(cat *Category) error {
	if _, ok := c.catByName[cat.Name]; ok {
		return fmt.Errorf("%w: name %q", ErrDuplicateCategory, cat.Name)
	}
	if other, ok := c.catByID[cat.ID]; ok {
		return fmt.Errorf("%w: id %d used by %q", ErrDuplicateCategory, cat.ID, other.Name)
	}
	cat.Selection = append([]string(nil), cat.Selection...)
	cat.Children = append([]string(nil), cat.Children...)
	c.categories = append(c.categories, cat)
	c.catByName[cat.Name] = cat
	c.catByID[cat.ID] = cat
	return nil
}

// HasCategory reports whether a category with that name exists.
func (c *Config) HasCategory(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.catByName[name]
	return ok
}

// Category returns a copy of the named category.
func (c *Config) Category(name string) (Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cat, ok := c.catByName[name]
	if !ok {
		return Category{}, false
	}
	return copyCategory(cat), true
}

// Categories returns copies of all categories in registration order.
func (c *Config) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = copyCategory(cat)
	}
	return out
}

// LeafCategories returns the categories without children.
func (c *Config) LeafCategories() []Category {
	var out []Category
	for _, cat := range c.Categories() {
		if cat.IsLeaf() {
			out = append(out, cat)
		}
	}
	return out
}

func copyCategory(cat *Category) Category {
	out := *cat
	out.Selection = append([]string(nil), cat.Selection...)
	out.Children = append([]string(nil), cat.Children...)
	return out
}

// AddVariable registers a variable.
func (c *Config) AddVariable(v Variable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.varByName[v.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateVariable, v.Name)
	}
	if v.Expression == "" {
		v.Expression = v.Name
	}
	c.variables = append(c.variables, &v)
	c.varByName[v.Name] = &v
	return nil
}

// Variable returns the named variable.
func (c *Config) Variable(name string) (Variable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.varByName[name]
	if !ok {
		return Variable{}, false
	}
	return *v, true
}

// Variables returns all variables in registration order.
func (c *Config) Variables() []Variable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Variable, len(c.variables))
	for i, v := range c.variables {
		out[i] = *v
	}
	return out
}

// CallOnce runs fn unless tag is already present on c. The tag is added only
// after fn succeeds; concurrent callers with the same tag wait for the running
// fn and then return nil, or retry it when it failed. fn must not call
// CallOnce with its own tag.
func CallOnce(c *Config, tag string, fn func(*Config) error) error {
	for {
		c.mu.Lock()
		if _, ok := c.tags[tag]; ok {
			c.mu.Unlock()
			return nil
		}
		if wait, ok := c.pending[tag]; ok {
			c.mu.Unlock()
			<-wait
			continue
		}
		done := make(chan struct{})
		c.pending[tag] = done
		c.mu.Unlock()

		err := fn(c)

		c.mu.Lock()
		delete(c.pending, tag)
		if err == nil {
			c.tags[tag] = struct{}{}
		}
		c.mu.Unlock()
		close(done)
		return err
	}
}
