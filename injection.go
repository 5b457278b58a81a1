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
	"fmt"
	"reflect"
)

/**
InjectionPoint is a single injectable location, either an annotated
field or an annotated method parameter. Created once during bean
initialization, immutable afterwards.
*/
type InjectionPoint struct {

	/**
	Bean declaring the injection point
	*/
	bean Bean

	/**
	Field member, nil for parameter injection points
	*/
	field *AnnotatedField

	/**
	Parameter member, nil for field injection points
	*/
	param *AnnotatedParameter

	/**
	Bindings required from the candidate bean
	*/
	qualifiers AnnotationSet
}

func newFieldInjectionPoint(bean Bean, field *AnnotatedField) *InjectionPoint {
	return &InjectionPoint{
		bean:       bean,
		field:      field,
		qualifiers: defaultBindings(field.Annotations().ByCategory(CategoryBinding)),
	}
}

func newParameterInjectionPoint(bean Bean, param *AnnotatedParameter) *InjectionPoint {
	return &InjectionPoint{
		bean:       bean,
		param:      param,
		qualifiers: defaultBindings(param.Annotations().ByCategory(CategoryBinding)),
	}
}

func (t *InjectionPoint) Bean() Bean {
	return t.bean
}

func (t *InjectionPoint) Field() *AnnotatedField {
	return t.field
}

func (t *InjectionPoint) Parameter() *AnnotatedParameter {
	return t.param
}

func (t *InjectionPoint) Type() reflect.Type {
	if t.field != nil {
		return t.field.Type()
	}
	return t.param.Type()
}

func (t *InjectionPoint) Qualifiers() AnnotationSet {
	return t.qualifiers
}

func (t *InjectionPoint) String() string {
	if t.field != nil {
		return fmt.Sprintf("injection point [%s] %s", t.qualifiers, t.field)
	}
	return fmt.Sprintf("injection point [%s] %s", t.qualifiers, t.param)
}

/**
CreationalContext threads the active injection point stack through one
instance-construction call chain. Each top-level construction gets its
own context, never shared between concurrent constructions, so the
stack needs no locking.

Push returns the paired release func; callers defer it immediately so
the pop runs on every exit path. An unpaired push corrupts error
attribution for the rest of the construction, hence the scoped form is
the only way to mutate the stack.
*/
type CreationalContext struct {
	stack []*InjectionPoint
}

func (t *Manager) NewCreationalContext() *CreationalContext {
	return &CreationalContext{}
}

func (t *CreationalContext) Push(ip *InjectionPoint) func() {
	t.stack = append(t.stack, ip)
	popped := false
	return func() {
		if popped {
			return
		}
		popped = true
		t.stack = t.stack[:len(t.stack)-1]
	}
}

/**
Current reports the injection point being resolved, so errors raised
deep in the object graph can name their location.
*/
func (t *CreationalContext) Current() (*InjectionPoint, bool) {
	if len(t.stack) == 0 {
		return nil, false
	}
	return t.stack[len(t.stack)-1], true
}

func (t *CreationalContext) Depth() int {
	return len(t.stack)
}

func (t *CreationalContext) String() string {
	if ip, ok := t.Current(); ok {
		return fmt.Sprintf("creational context [depth=%d, current=%s]", len(t.stack), ip)
	}
	return fmt.Sprintf("creational context [depth=%d]", len(t.stack))
}
