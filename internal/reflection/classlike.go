// Package reflection is the read-only class/interface/enum database (spec
// §4.7): per-symbol method, property, and constant lookups consulted by
// the expression analyzer and, as a typeatom.InheritanceResolver, by
// nominal subtyping checks.
//
// Grounded in the teacher's graph/callgraph/registry.BuiltinRegistry
// (FQN-keyed maps of pre-populated type info, with small accessor methods
// doing the map lookups) generalized from a fixed builtin-type table to an
// arbitrary, codebase-scanned symbol table. The lookup cache is new: the
// teacher never needed one for a handful of builtins, but a whole-program
// symbol table benefits from memoizing the method-resolution walk up the
// inheritance chain, so this package wires in golang-lru/v2 (listed as an
// indirect-only dependency in the teacher's go.mod, unused by any of its
// code) for exactly that purpose.
package reflection

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
)

// MethodInfo describes one declared method.
type MethodInfo struct {
	DeclaringClass string
	Name           string
	ReturnType     *typeatom.Union
	ParamTypes     []*typeatom.Union
	IsStatic       bool
	Visibility     Visibility
	Pure           bool
}

// PropertyInfo describes one declared instance or static property.
type PropertyInfo struct {
	DeclaringClass string
	Name           string
	Type           *typeatom.Union
	Visibility     Visibility
	IsStatic       bool
}

// ConstantInfo describes one declared class constant.
type ConstantInfo struct {
	DeclaringClass string
	Name           string
	Type           *typeatom.Union
}

// Visibility mirrors the three OO visibility levels consulted by the
// analyzer's best-effort visibility diagnostic (spec §9 Open Question 2).
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// ClassLikeInfo is one class/interface/trait/enum's reflection record.
type ClassLikeInfo struct {
	Name       string
	Parents    []string // direct extends/implements, in declaration order
	Methods    map[string]*MethodInfo
	Properties map[string]*PropertyInfo
	Constants  map[string]*ConstantInfo
	IsInterface bool
	IsEnum      bool
	EnumBackingType *typeatom.Union // default-to-backing-type fallback, spec §7
}

// Database is the whole-program, read-only reflection table. Constructed
// once per analysis run and never mutated afterward, so every lookup is
// safe to memoize.
type Database struct {
	classes map[string]*ClassLikeInfo

	methodCache   *lru.Cache[string, *MethodInfo]
	propertyCache *lru.Cache[string, *PropertyInfo]
}

const defaultCacheSize = 4096

// NewDatabase builds an empty database with its lookup caches sized for a
// mid-sized codebase; callers populate it via AddClass before analysis
// begins.
func NewDatabase() *Database {
	methodCache, _ := lru.New[string, *MethodInfo](defaultCacheSize)
	propertyCache, _ := lru.New[string, *PropertyInfo](defaultCacheSize)
	return &Database{
		classes:       make(map[string]*ClassLikeInfo),
		methodCache:   methodCache,
		propertyCache: propertyCache,
	}
}

// AddClass registers or replaces a class-like's reflection record.
func (d *Database) AddClass(info *ClassLikeInfo) {
	d.classes[info.Name] = info
	d.methodCache.Purge()
	d.propertyCache.Purge()
}

func (d *Database) getClass(name string) (*ClassLikeInfo, bool) {
	c, ok := d.classes[name]
	return c, ok
}

// ClassOrInterfaceExists reports whether name is a registered symbol.
func (d *Database) ClassOrInterfaceExists(name string) bool {
	_, ok := d.classes[name]
	return ok
}

// IsClassOrInterfaceOf walks the parent chain of sub looking for sup,
// implementing typeatom.InheritanceResolver so subtype.IsContainedBy can
// consult this database without internal/typeatom importing reflection.
func (d *Database) IsClassOrInterfaceOf(sub, sup string) bool {
	if sub == sup {
		return true
	}
	visited := map[string]bool{}
	var walk func(name string) bool
	walk = func(name string) bool {
		if visited[name] {
			return false
		}
		visited[name] = true
		c, ok := d.getClass(name)
		if !ok {
			return false
		}
		for _, p := range c.Parents {
			if p == sup || walk(p) {
				return true
			}
		}
		return false
	}
	return walk(sub)
}

// GetDeclaringMethodID resolves the class that actually declares method
// name when looked up starting from class, walking the parent chain and
// stopping at the first declaration found (spec §4.7
// "get_declaring_method_id"). Memoized since method resolution walks are
// the hottest path in whole-program mode.
func (d *Database) GetDeclaringMethodID(class, name string) (*MethodInfo, bool) {
	cacheKey := class + "::" + name
	if cached, ok := d.methodCache.Get(cacheKey); ok {
		if cached == nil {
			return nil, false
		}
		return cached, true
	}

	visited := map[string]bool{}
	var walk func(className string) *MethodInfo
	walk = func(className string) *MethodInfo {
		if visited[className] {
			return nil
		}
		visited[className] = true
		c, ok := d.getClass(className)
		if !ok {
			return nil
		}
		if m, ok := c.Methods[name]; ok {
			return m
		}
		for _, p := range c.Parents {
			if m := walk(p); m != nil {
				return m
			}
		}
		return nil
	}

	m := walk(class)
	d.methodCache.Add(cacheKey, m)
	return m, m != nil
}

// GetPropertyType returns the declared type of property propName on class
// (or an ancestor), per spec §4.7 "get_property_type".
func (d *Database) GetPropertyType(class, propName string) (*typeatom.Union, bool) {
	cacheKey := class + "::$" + propName
	if cached, ok := d.propertyCache.Get(cacheKey); ok {
		if cached == nil {
			return nil, false
		}
		return cached.Type, true
	}

	info, ok := d.getDeclaringPropertyInfo(class, propName)
	d.propertyCache.Add(cacheKey, info)
	if !ok {
		return nil, false
	}
	return info.Type, true
}

// GetDeclaringClassForProperty returns the class that actually declares
// propName when resolution starts at class (spec §4.7
// "get_declaring_class_for_property").
func (d *Database) GetDeclaringClassForProperty(class, propName string) (string, bool) {
	info, ok := d.getDeclaringPropertyInfo(class, propName)
	if !ok {
		return "", false
	}
	return info.DeclaringClass, true
}

func (d *Database) getDeclaringPropertyInfo(class, propName string) (*PropertyInfo, bool) {
	visited := map[string]bool{}
	var walk func(className string) *PropertyInfo
	walk = func(className string) *PropertyInfo {
		if visited[className] {
			return nil
		}
		visited[className] = true
		c, ok := d.getClass(className)
		if !ok {
			return nil
		}
		if p, ok := c.Properties[propName]; ok {
			return p
		}
		for _, parent := range c.Parents {
			if p := walk(parent); p != nil {
				return p
			}
		}
		return nil
	}
	info := walk(class)
	return info, info != nil
}

// PropertyExists reports whether class (or an ancestor) declares propName.
func (d *Database) PropertyExists(class, propName string) bool {
	_, ok := d.getDeclaringPropertyInfo(class, propName)
	return ok
}

// GetClassConstantType resolves a class constant's type, falling back to
// an enum's backing type when constName is unset and class is an enum
// with no matching constant (spec §7 "EnumConstraint default-to-backing-
// type").
func (d *Database) GetClassConstantType(class, constName string) (*typeatom.Union, bool) {
	c, ok := d.getClass(class)
	if !ok {
		return nil, false
	}
	if cst, ok := c.Constants[constName]; ok {
		return cst.Type, true
	}
	for _, p := range c.Parents {
		if t, ok := d.GetClassConstantType(p, constName); ok {
			return t, true
		}
	}
	if c.IsEnum && c.EnumBackingType != nil {
		return c.EnumBackingType, true
	}
	return nil, false
}
