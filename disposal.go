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
DisposalMethod releases instances created by the producer it pairs
with. The pairing key is the disposed parameter type plus its binding
set; a producer resolves at most one disposal method, several matches
are a definition error on the producer side.
*/
type DisposalMethod struct {
	manager       *Manager
	declaringBean Bean
	method        *AnnotatedMethod
	enhanced      *EnhancedMethod
	disposedParam *AnnotatedParameter
	qualifiers    AnnotationSet
}

func NewDisposalMethod(manager *Manager, declaringBean Bean, method *AnnotatedMethod) (*DisposalMethod, error) {
	disposed := method.AnnotatedParameters(Disposes)
	if len(disposed) == 0 {
		return nil, definitionErrorf("disposal %s must have a parameter annotated @Disposes", method)
	}
	if len(disposed) > 1 {
		return nil, definitionErrorf("disposal %s cannot have several parameters annotated @Disposes", method)
	}
	if method.IsAnnotationPresent(Produces) {
		return nil, definitionErrorf("disposal %s cannot be annotated @Produces", method)
	}
	if method.IsAnnotationPresent(Initializer) {
		return nil, definitionErrorf("disposal %s cannot be annotated @Initializer", method)
	}
	if !method.Static() && declaringBean == nil {
		return nil, definitionErrorf("declaring bean required for instance %s", method)
	}

	transformer, err := manager.memberTransformer()
	if err != nil {
		return nil, err
	}
	enhanced, err := transformer.LoadEnhancedMethod(method, manager.ID())
	if err != nil {
		return nil, err
	}

	return &DisposalMethod{
		manager:       manager,
		declaringBean: declaringBean,
		method:        method,
		enhanced:      enhanced,
		disposedParam: disposed[0],
		qualifiers:    defaultBindings(disposed[0].Annotations().ByCategory(CategoryBinding)),
	}, nil
}

func (t *DisposalMethod) Method() *AnnotatedMethod {
	return t.method
}

func (t *DisposalMethod) DisposedType() reflect.Type {
	return t.disposedParam.Type()
}

func (t *DisposalMethod) Qualifiers() AnnotationSet {
	return t.qualifiers
}

/**
Matches reports whether this method disposes products of the given type
and binding set. Bindings are compared as whole sets, the disposal of
{A} never picks up products of {A, B}.
*/
func (t *DisposalMethod) Matches(productType reflect.Type, qualifiers AnnotationSet) bool {
	return typeMatches(productType, t.disposedParam.Type()) && t.qualifiers.Equal(qualifiers)
}

/**
Invoke calls the method with the disposed instance substituted for the
@Disposes parameter and the remaining parameters injected.
*/
func (t *DisposalMethod) Invoke(instance interface{}, cc *CreationalContext) error {
	if cc == nil {
		cc = t.manager.NewCreationalContext()
	}

	var receiver interface{}
	if !t.method.Static() {
		var err error
		receiver, err = t.manager.GetReference(t.declaringBean, cc)
		if err != nil {
			return err
		}
	}

	params := t.method.Parameters()
	args := make([]interface{}, len(params))
	for i, p := range params {
		if p == t.disposedParam {
			args[i] = instance
			continue
		}
		if p.Annotations().Contains(Observes) {
			continue
		}
		arg, err := resolveParameterArgument(t.manager, t.declaringBean, p, cc)
		if err != nil {
			return err
		}
		args[i] = arg
	}

	_, err := t.method.Invoke(receiver, args)
	return err
}

func (t *DisposalMethod) String() string {
	return fmt.Sprintf("disposal method [%s, disposes %v %s]", t.method, t.DisposedType(), t.qualifiers)
}
