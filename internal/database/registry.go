package database

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
)

var (
	// ErrCyclicDependency means the declared foreign keys form a loop.
	ErrCyclicDependency = errors.New("cyclic table dependency")
	// ErrUnknownDependency means a table references a model that was never registered.
	ErrUnknownDependency = errors.New("dependency on unregistered table")
)

// Table is one registered table definition.
type Table struct {
	Model     any
	Name      string
	Priority  int
	DependsOn []reflect.Type

	typ   reflect.Type
	order int
}

// Registry is the ordered set of table definitions the bootstrap creates.
// Registration is explicit; defining a model type registers nothing.
type Registry struct {
	mu     sync.RWMutex
	tables []*Table
	byType map[reflect.Type]*Table
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type]*Table)}
}

// Register adds a model whose foreign keys point at the given models.
// Registering the same model type twice is a no-op.
func (r *Registry) Register(model any, dependsOn ...any) {
	r.RegisterWithPriority(model, 0, dependsOn...)
}

// RegisterWithPriority is Register with an explicit ordering hint; lower
// priorities are created first when dependencies allow it.
func (r *Registry) RegisterWithPriority(model any, priority int, dependsOn ...any) {
	typ := modelType(model)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byType[typ]; ok {
		return
	}
	deps := make([]reflect.Type, 0, len(dependsOn))
	for _, d := range dependsOn {
		deps = append(deps, modelType(d))
	}
	t := &Table{
		Model:     model,
		Name:      tableName(typ),
		Priority:  priority,
		DependsOn: deps,
		typ:       typ,
		order:     len(r.tables),
	}
	r.tables = append(r.tables, t)
	r.byType[typ] = t
}

// Len reports how many tables are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Ordered returns the tables dependency-first. Among tables whose
// dependencies are satisfied, lower priority wins, then registration order.
func (r *Registry) Ordered() ([]Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indegree := make(map[reflect.Type]int, len(r.tables))
	dependents := make(map[reflect.Type][]*Table, len(r.tables))
	for _, t := range r.tables {
		indegree[t.typ] += 0
		for _, dep := range t.DependsOn {
			if dep == t.typ {
				continue
			}
			if _, ok := r.byType[dep]; !ok {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownDependency, t.Name, tableName(dep))
			}
			indegree[t.typ]++
			dependents[dep] = append(dependents[dep], t)
		}
	}

	var ready []*Table
	for _, t := range r.tables {
		if indegree[t.typ] == 0 {
			ready = append(ready, t)
		}
	}

	out := make([]Table, 0, len(r.tables))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			if ready[i].Priority != ready[j].Priority {
				return ready[i].Priority < ready[j].Priority
			}
			return ready[i].order < ready[j].order
		})
		next := ready[0]
		ready = ready[1:]
		out = append(out, *next)
		for _, d := range dependents[next.typ] {
			indegree[d.typ]--
			if indegree[d.typ] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(out) != len(r.tables) {
		var stuck []string
		for _, t := range r.tables {
			if indegree[t.typ] > 0 {
				stuck = append(stuck, t.Name)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(stuck, ", "))
	}
	return out, nil
}

func modelType(model any) reflect.Type {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// tableName reads the table: option of an embedded bun.BaseModel tag and
// otherwise applies Bun's default naming: snake_case, pluralized.
func tableName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Type.Name() != "BaseModel" || !strings.Contains(f.Type.PkgPath(), "uptrace/bun") {
				continue
			}
			for _, part := range strings.Split(f.Tag.Get("bun"), ",") {
				part = strings.TrimSpace(part)
				if strings.HasPrefix(part, "table:") {
					return strings.TrimPrefix(part, "table:")
				}
			}
		}
	}
	return inflection.Plural(underscore(t.Name()))
}

// underscore converts a Go identifier to snake_case the way Bun does, so
// acronyms stay together (HTTPRequest -> http_request).
func underscore(s string) string {
	r := make([]byte, 0, len(s)+5)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUpper(c) {
			if i > 0 && i+1 < len(s) && (isLower(s[i-1]) || isLower(s[i+1])) {
				r = append(r, '_', c+'a'-'A')
			} else {
				r = append(r, c+'a'-'A')
			}
			continue
		}
		r = append(r, c)
	}
	return string(r)
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
