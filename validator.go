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
	"reflect"
)

/**
Structural definition checks. Each rule is independent and side effect
free, raising a DefinitionError on violation. The manager aggregates
the errors across the deployment instead of stopping at the first one.
*/

func validateInjectableField(field *AnnotatedField) error {
	if field.Static() {
		return definitionErrorf("don't place binding annotations on static fields, %s", field)
	}
	if field.Final() {
		return definitionErrorf("don't place binding annotations on final fields, %s", field)
	}
	return nil
}

func validateInitializerMethod(method *AnnotatedMethod) error {
	if method.Static() {
		return definitionErrorf("initializer %s cannot be static", method)
	}
	if method.IsAnnotationPresent(Produces) {
		return definitionErrorf("initializer %s cannot be annotated @Produces", method)
	}
	if len(method.AnnotatedParameters(Disposes)) > 0 {
		return definitionErrorf("initializer %s cannot have parameters annotated @Disposes", method)
	}
	if len(method.AnnotatedParameters(Observes)) > 0 {
		return definitionErrorf("initializer %s cannot have parameters annotated @Observes", method)
	}
	return nil
}

/**
AnnotatedMember is the common view of fields and methods consumed by
the member-level validation and transformation services.
*/
type AnnotatedMember interface {
	Declaring() *AnnotatedType
	Annotations() AnnotationSet
	Static() bool
	String() string
}

var (
	_ AnnotatedMember = (*AnnotatedField)(nil)
	_ AnnotatedMember = (*AnnotatedMethod)(nil)
)

/**
General constraints of any producer member, checked before a producer
is built from it.
*/
func validateAnnotatedMember(member AnnotatedMember) error {
	if member.Declaring() == nil {
		return definitionErrorf("declaring type of %s cannot be resolved", member)
	}
	if method, ok := member.(*AnnotatedMethod); ok && method.IsAnnotationPresent(Produces) {
		if len(method.AnnotatedParameters(Disposes)) > 0 {
			return definitionErrorf("producer %s cannot have parameters annotated @Disposes", method)
		}
		if len(method.AnnotatedParameters(Observes)) > 0 {
			return definitionErrorf("producer %s cannot have parameters annotated @Observes", method)
		}
		if method.IsAnnotationPresent(Initializer) {
			return definitionErrorf("producer %s cannot be annotated @Initializer", method)
		}
	}
	return nil
}

func checkBeanImplementation(typ *AnnotatedType) error {
	if typ.Abstract() {
		return definitionErrorf("implementation class %s cannot be declared abstract", typ)
	}
	return nil
}

func preCheckSpecialization(typ *AnnotatedType) error {
	if typ.Superclass() == nil {
		return definitionErrorf("specializing bean %s must extend another bean", typ)
	}
	return nil
}

/**
InjectionTargetService validates the injection points of a freshly
built producer: every one must resolve to exactly one candidate bean.
Obtained through the manager's service registry, never hard-wired.
*/
type InjectionTargetService struct {
	manager *Manager
}

func newInjectionTargetService(manager *Manager) *InjectionTargetService {
	return &InjectionTargetService{manager: manager}
}

func (t *InjectionTargetService) ValidateProducer(producer Producer) error {
	for _, ip := range producer.InjectionPoints() {
		if err := t.ValidateInjectionPoint(ip); err != nil {
			return err
		}
	}
	return nil
}

func (t *InjectionTargetService) ValidateInjectionPoint(ip *InjectionPoint) error {
	candidates := t.manager.resolveBeans(ip.Type(), ip.Qualifiers())
	switch len(candidates) {
	case 0:
		return definitionErrorf("unsatisfied dependency at %s", ip)
	case 1:
		return nil
	default:
		return definitionErrorf("ambiguous dependency at %s, %d candidates", ip, len(candidates))
	}
}

/**
Injectable field types are restricted the same way the scanning side of
the container restricts them, pointers and interfaces only.
*/
func checkInjectableFieldType(field *AnnotatedField) error {
	kind := field.Type().Kind()
	if kind != reflect.Ptr && kind != reflect.Interface {
		return definitionErrorf("not a pointer or interface field type '%v' of %s", field.Type(), field)
	}
	return nil
}
