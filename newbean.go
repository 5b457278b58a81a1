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
newBean is the @New-qualified wrapper of a managed bean. It delegates
the structural metadata of the wrapped bean, injection points and
initializer methods included, while substituting its own semantics:
always @Dependent, the single binding @New, no name, and no producer or
disposal behaviour of its own. Type identity stays with the wrapped
implementation type.
*/
type newBean struct {
	wrapped    *classBean
	qualifiers AnnotationSet
}

func NewNewBean(wrapped Bean) (Bean, error) {
	cb, ok := wrapped.(*classBean)
	if !ok {
		return nil, illegalArgumentErrorf("new beans wrap managed beans, got %s", wrapped)
	}
	return &newBean{wrapped: cb, qualifiers: Annotations(New)}, nil
}

func (t *newBean) Kind() BeanKind {
	return KindNew
}

func (t *newBean) Name() string {
	return ""
}

func (t *newBean) Type() reflect.Type {
	return t.wrapped.Type()
}

func (t *newBean) AnnotatedItem() *AnnotatedType {
	return t.wrapped.AnnotatedItem()
}

func (t *newBean) Scope() *Annotation {
	return Dependent
}

func (t *newBean) Deployment() *Annotation {
	return t.wrapped.Deployment()
}

func (t *newBean) Qualifiers() AnnotationSet {
	return t.qualifiers
}

func (t *newBean) InjectionPoints() []*InjectionPoint {
	return t.wrapped.InjectionPoints()
}

func (t *newBean) InitializerMethods() []*AnnotatedMethod {
	return t.wrapped.InitializerMethods()
}

func (t *newBean) Create(cc *CreationalContext) (interface{}, error) {
	return t.wrapped.Create(cc)
}

func (t *newBean) Destroy(interface{}) error {
	return nil
}

func (t *newBean) String() string {
	return fmt.Sprintf("new bean [%v]", t.wrapped.Type())
}
