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

import "reflect"

type BeanKind int

const (
	KindManaged BeanKind = iota
	KindProducerMethod
	KindProducerField
	KindNew
)

func (t BeanKind) String() string {
	switch t {
	case KindManaged:
		return "managed"
	case KindProducerMethod:
		return "producer-method"
	case KindProducerField:
		return "producer-field"
	case KindNew:
		return "new"
	default:
		return "unknown"
	}
}

/**
Bean is a managed object definition the container can instantiate and
inject. Scope, deployment type, bindings and injection points are
resolved exactly once during initialization, before the definition is
handed to the manager, and are immutable afterwards.

Two beans are the same definition when kind, implementation type and
binding set all match.
*/
type Bean interface {

	/**
	Returns kind of the bean definition
	*/
	Kind() BeanKind

	/**
	Returns name of the bean or empty string for anonymous beans
	*/
	Name() string

	/**
	Returns implementation type of the bean, a pointer or interface type
	*/
	Type() reflect.Type

	/**
	Returns resolved scope annotation
	*/
	Scope() *Annotation

	/**
	Returns resolved deployment type annotation
	*/
	Deployment() *Annotation

	/**
	Returns binding annotations of the bean
	*/
	Qualifiers() AnnotationSet

	/**
	Returns all injection points declared by the bean
	*/
	InjectionPoints() []*InjectionPoint

	/**
	Creates a new instance, injecting it through the given creational context
	*/
	Create(cc *CreationalContext) (interface{}, error)

	/**
	Releases an instance previously created by this bean
	*/
	Destroy(instance interface{}) error

	/**
	Returns information about the bean
	*/
	String() string
}

/**
Producer is a capability bound to a producer member that creates
instances of the product type and, when a disposal method is paired,
destroys them. A producer is never returned partially validated, the
validating creation path checks its injection points synchronously
before handing it out.
*/
type Producer interface {

	/**
	Produces a new product instance
	*/
	Produce(cc *CreationalContext) (interface{}, error)

	/**
	Invokes the paired disposal method if any
	*/
	Dispose(instance interface{}) error

	/**
	Returns the parameter injection points of the producer member
	*/
	InjectionPoints() []*InjectionPoint

	/**
	Returns the raw annotated member the producer was built from
	*/
	Annotated() AnnotatedMember
}

/**
Equal reports whether two bean definitions are the same, identity by
kind, implementation type and binding set.
*/
func Equal(a, b Bean) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind() == b.Kind() && a.Type() == b.Type() && a.Qualifiers().Equal(b.Qualifiers())
}
