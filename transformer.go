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
	"sync"

	"github.com/pkg/errors"
)

/**
MemberTransformer converts raw annotated members into enhanced views
exposing resolved parameter injection slots. Results are memoized per
(owner id, member), because enhancing a member re-derives the same
metadata every time. The owner id partitions the cache across isolated
manager instances living in one process.

The cache is a sync.Map: entry computation is idempotent, racing
computations for the same key are safe to duplicate, the first stored
entry wins.
*/
type MemberTransformer struct {
	cache sync.Map
}

func NewMemberTransformer() *MemberTransformer {
	return &MemberTransformer{}
}

type memberCacheKey struct {
	ownerID string
	member  AnnotatedMember
}

/**
EnhancedMethod is the transformed view of a producer, initializer or
disposal method: the injectable parameter slots with the marker
parameters excluded, plus a handle back to the declaring type.
*/
type EnhancedMethod struct {
	method           *AnnotatedMethod
	injectableParams []*AnnotatedParameter
	disposedParam    *AnnotatedParameter
}

func (t *EnhancedMethod) Method() *AnnotatedMethod {
	return t.method
}

func (t *EnhancedMethod) Declaring() *AnnotatedType {
	return t.method.Declaring()
}

func (t *EnhancedMethod) InjectableParameters() []*AnnotatedParameter {
	out := make([]*AnnotatedParameter, len(t.injectableParams))
	copy(out, t.injectableParams)
	return out
}

func (t *EnhancedMethod) DisposedParameter() *AnnotatedParameter {
	return t.disposedParam
}

/**
Parameter injection points of the method owned by the given bean.
*/
func (t *EnhancedMethod) InjectionPoints(bean Bean) []*InjectionPoint {
	var out []*InjectionPoint
	for _, p := range t.injectableParams {
		out = append(out, newParameterInjectionPoint(bean, p))
	}
	return out
}

/**
EnhancedField is the transformed view of a producer field.
*/
type EnhancedField struct {
	field *AnnotatedField
}

func (t *EnhancedField) Field() *AnnotatedField {
	return t.field
}

func (t *EnhancedField) Declaring() *AnnotatedType {
	return t.field.Declaring()
}

func (t *MemberTransformer) LoadEnhancedMethod(method *AnnotatedMethod, ownerID string) (*EnhancedMethod, error) {
	key := memberCacheKey{ownerID: ownerID, member: method}
	if cached, ok := t.cache.Load(key); ok {
		return cached.(*EnhancedMethod), nil
	}
	if method.Declaring() == nil {
		return nil, errors.Errorf("unable to transform %s, declaring type cannot be resolved", method)
	}
	enhanced := &EnhancedMethod{method: method}
	for _, p := range method.Parameters() {
		switch {
		case p.Annotations().Contains(Disposes):
			enhanced.disposedParam = p
		case p.Annotations().Contains(Observes):
		default:
			enhanced.injectableParams = append(enhanced.injectableParams, p)
		}
	}
	actual, _ := t.cache.LoadOrStore(key, enhanced)
	return actual.(*EnhancedMethod), nil
}

func (t *MemberTransformer) LoadEnhancedField(field *AnnotatedField, ownerID string) (*EnhancedField, error) {
	key := memberCacheKey{ownerID: ownerID, member: field}
	if cached, ok := t.cache.Load(key); ok {
		return cached.(*EnhancedField), nil
	}
	if field.Declaring() == nil {
		return nil, errors.Errorf("unable to transform %s, declaring type cannot be resolved", field)
	}
	actual, _ := t.cache.LoadOrStore(key, &EnhancedField{field: field})
	return actual.(*EnhancedField), nil
}
