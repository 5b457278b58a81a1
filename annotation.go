/*
 *
 * Copyright 2024-present Marek Novotny.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package weld

import (
	"strings"
)

type AnnotationCategory int

const (
	CategoryPlain AnnotationCategory = iota
	CategoryScope
	CategoryDeployment
	CategoryBinding
	CategoryStereotype
)

func (t AnnotationCategory) String() string {
	switch t {
	case CategoryPlain:
		return "plain"
	case CategoryScope:
		return "scope"
	case CategoryDeployment:
		return "deployment"
	case CategoryBinding:
		return "binding"
	case CategoryStereotype:
		return "stereotype"
	default:
		return "unknown"
	}
}

/**
Annotation is a named marker attached to program elements by the
introspection substrate. The category plays the role of the
meta-annotation on the annotation type: a scope annotation is one whose
type is meta-annotated as a scope, and so on.

Annotations are compared by pointer identity, one value per annotation
type in the deployment.
*/
type Annotation struct {

	/**
	Simple name of the annotation type
	*/
	name string

	/**
	Meta-annotation category of the annotation type
	*/
	category AnnotationCategory

	/**
	Normal scopes are proxied client-visible scopes, pseudo-scopes are not.
	Meaningful only for scope annotations.
	*/
	normal bool

	/**
	Stereotype payload, nil fields for non-stereotypes
	*/
	defaultScope      *Annotation
	defaultDeployment *Annotation
	supportedScopes   []*Annotation
	named             bool
}

func (t *Annotation) Name() string {
	return t.name
}

func (t *Annotation) Category() AnnotationCategory {
	return t.category
}

func (t *Annotation) Normal() bool {
	return t.normal
}

func (t *Annotation) String() string {
	return "@" + t.name
}

func NewScope(name string, normal bool) *Annotation {
	return &Annotation{name: name, category: CategoryScope, normal: normal}
}

func NewDeployment(name string) *Annotation {
	return &Annotation{name: name, category: CategoryDeployment}
}

func NewBinding(name string) *Annotation {
	return &Annotation{name: name, category: CategoryBinding}
}

func NewMarker(name string) *Annotation {
	return &Annotation{name: name, category: CategoryPlain}
}

type StereotypeOption func(*Annotation)

func WithDefaultScope(scope *Annotation) StereotypeOption {
	return func(a *Annotation) { a.defaultScope = scope }
}

func WithDefaultDeployment(deployment *Annotation) StereotypeOption {
	return func(a *Annotation) { a.defaultDeployment = deployment }
}

func WithSupportedScopes(scopes ...*Annotation) StereotypeOption {
	return func(a *Annotation) { a.supportedScopes = scopes }
}

func WithNamed() StereotypeOption {
	return func(a *Annotation) { a.named = true }
}

func NewStereotype(name string, opts ...StereotypeOption) *Annotation {
	a := &Annotation{name: name, category: CategoryStereotype}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

/**
Built-in annotations mirroring the managed object specification.

Dependent is the default scope, Production the default deployment type,
Current the default binding. New is the binding of wrapper beans.
*/
var (
	Dependent  = NewScope("Dependent", false)
	Production = NewDeployment("Production")
	Standard   = NewDeployment("Standard")
	Current    = NewBinding("Current")
	New        = NewBinding("New")

	Produces    = NewMarker("Produces")
	Initializer = NewMarker("Initializer")
	Disposes    = NewMarker("Disposes")
	Observes    = NewMarker("Observes")
	Specializes = NewMarker("Specializes")
)

/**
AnnotationSet is an immutable ordered set of annotations. Duplicates by
identity are dropped on construction.
*/
type AnnotationSet struct {
	list []*Annotation
}

func Annotations(list ...*Annotation) AnnotationSet {
	var out []*Annotation
	for _, a := range list {
		if a == nil {
			continue
		}
		found := false
		for _, e := range out {
			if e == a {
				found = true
				break
			}
		}
		if !found {
			out = append(out, a)
		}
	}
	return AnnotationSet{list: out}
}

func (t AnnotationSet) Contains(a *Annotation) bool {
	for _, e := range t.list {
		if e == a {
			return true
		}
	}
	return false
}

func (t AnnotationSet) ByCategory(category AnnotationCategory) []*Annotation {
	var out []*Annotation
	for _, e := range t.list {
		if e.category == category {
			out = append(out, e)
		}
	}
	return out
}

func (t AnnotationSet) List() []*Annotation {
	out := make([]*Annotation, len(t.list))
	copy(out, t.list)
	return out
}

func (t AnnotationSet) Size() int {
	return len(t.list)
}

func (t AnnotationSet) Merge(other AnnotationSet) AnnotationSet {
	return Annotations(append(t.List(), other.list...)...)
}

/**
Set equality regardless of order, used for disposal pairing of binding sets.
*/
func (t AnnotationSet) Equal(other AnnotationSet) bool {
	if len(t.list) != len(other.list) {
		return false
	}
	for _, e := range t.list {
		if !other.Contains(e) {
			return false
		}
	}
	return true
}

/**
ContainsAll reports whether every annotation of required is present,
used for candidate filtering during resolution.
*/
func (t AnnotationSet) ContainsAll(required AnnotationSet) bool {
	for _, e := range required.list {
		if !t.Contains(e) {
			return false
		}
	}
	return true
}

func (t AnnotationSet) String() string {
	var names []string
	for _, e := range t.list {
		names = append(names, e.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}

/**
Default binding set applied where an element declares no binding at all.
*/
func defaultBindings(declared []*Annotation) AnnotationSet {
	if len(declared) == 0 {
		return Annotations(Current)
	}
	return Annotations(declared...)
}
