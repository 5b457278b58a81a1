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
	"strings"

	"github.com/pkg/errors"
)

/**
Structured metadata descriptors produced by the introspection capability.

The descriptors are immutable once constructed by DefineType. The
container core never inspects program elements itself, it consumes these
views only, so any substrate able to fill TypeMeta can drive the
pipeline.
*/

type TypeMeta struct {

	/**
	Class of the pointer to the struct
	*/
	Class reflect.Type

	/**
	Annotations declared directly on this type
	*/
	Annotations []*Annotation

	/**
	Direct superclass metadata, nil for a root type
	*/
	Superclass *AnnotatedType

	/**
	Abstract implementation marker
	*/
	Abstract bool

	Fields  []FieldMeta
	Methods []MethodMeta
}

type FieldMeta struct {
	Name        string
	Static      bool
	Annotations []*Annotation
}

type MethodMeta struct {
	Name   string
	Static bool

	/**
	Go func backing the method. For instance methods the first argument
	is the receiver, the declared parameters follow.
	*/
	Func interface{}

	Annotations []*Annotation

	/**
	Per-parameter annotations, aligned with the declared parameters
	(receiver excluded)
	*/
	Parameters []ParameterMeta
}

type ParameterMeta struct {
	Annotations []*Annotation
}

type AnnotatedType struct {
	classPtr   reflect.Type
	name       string
	abstract   bool
	superclass *AnnotatedType
	declared   AnnotationSet
	fields     []*AnnotatedField
	methods    []*AnnotatedMethod
}

type AnnotatedField struct {
	declaring   *AnnotatedType
	name        string
	fieldNum    int
	fieldType   reflect.Type
	static      bool
	final       bool
	annotations AnnotationSet
}

type AnnotatedMethod struct {
	declaring   *AnnotatedType
	name        string
	static      bool
	fn          reflect.Value
	returnType  reflect.Type
	params      []*AnnotatedParameter
	annotations AnnotationSet
}

type AnnotatedParameter struct {
	method      *AnnotatedMethod
	index       int
	paramType   reflect.Type
	annotations AnnotationSet
}

/**
DefineType builds the annotated view of a struct type by reflection.

Field names in meta must resolve to struct fields; unexported fields are
not settable through reflection and are therefore reported as final.
Method funcs are verified against the declared static flag so that an
instance method always receives the declaring struct pointer first.
*/
func DefineType(meta TypeMeta) (*AnnotatedType, error) {
	classPtr := meta.Class
	if classPtr == nil || classPtr.Kind() != reflect.Ptr || classPtr.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("annotated type requires a pointer to struct, got '%v'", classPtr)
	}
	class := classPtr.Elem()

	t := &AnnotatedType{
		classPtr:   classPtr,
		name:       class.Name(),
		abstract:   meta.Abstract,
		superclass: meta.Superclass,
		declared:   Annotations(meta.Annotations...),
	}

	for _, fm := range meta.Fields {
		field, ok := class.FieldByName(fm.Name)
		if !ok {
			return nil, errors.Errorf("field '%s' not found in '%v'", fm.Name, classPtr)
		}
		if len(field.Index) != 1 {
			return nil, errors.Errorf("field '%s' is promoted from an embedded struct in '%v'", fm.Name, classPtr)
		}
		t.fields = append(t.fields, &AnnotatedField{
			declaring:   t,
			name:        fm.Name,
			fieldNum:    field.Index[0],
			fieldType:   field.Type,
			static:      fm.Static,
			final:       field.PkgPath != "",
			annotations: Annotations(fm.Annotations...),
		})
	}

	for _, mm := range meta.Methods {
		m, err := defineMethod(t, mm)
		if err != nil {
			return nil, err
		}
		t.methods = append(t.methods, m)
	}

	return t, nil
}

func defineMethod(declaring *AnnotatedType, meta MethodMeta) (*AnnotatedMethod, error) {
	fn := reflect.ValueOf(meta.Func)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, errors.Errorf("method '%s' of '%v' requires a func, got '%v'", meta.Name, declaring, meta.Func)
	}
	ft := fn.Type()

	offset := 0
	if !meta.Static {
		if ft.NumIn() == 0 || ft.In(0) != declaring.classPtr {
			return nil, errors.Errorf("instance method '%s' of '%v' must take the receiver '%v' first", meta.Name, declaring, declaring.classPtr)
		}
		offset = 1
	}

	numParams := ft.NumIn() - offset
	if len(meta.Parameters) > numParams {
		return nil, errors.Errorf("method '%s' of '%v' declares %d parameters but func takes %d", meta.Name, declaring, len(meta.Parameters), numParams)
	}

	var returnType reflect.Type
	switch ft.NumOut() {
	case 0:
	case 1:
		if !ft.Out(0).Implements(errorInterface) {
			returnType = ft.Out(0)
		}
	case 2:
		if !ft.Out(1).Implements(errorInterface) {
			return nil, errors.Errorf("method '%s' of '%v' second result must be error", meta.Name, declaring)
		}
		returnType = ft.Out(0)
	default:
		return nil, errors.Errorf("method '%s' of '%v' can have at most two results", meta.Name, declaring)
	}

	m := &AnnotatedMethod{
		declaring:   declaring,
		name:        meta.Name,
		static:      meta.Static,
		fn:          fn,
		returnType:  returnType,
		annotations: Annotations(meta.Annotations...),
	}
	for i := 0; i < numParams; i++ {
		var ann []*Annotation
		if i < len(meta.Parameters) {
			ann = meta.Parameters[i].Annotations
		}
		m.params = append(m.params, &AnnotatedParameter{
			method:      m,
			index:       i,
			paramType:   ft.In(i + offset),
			annotations: Annotations(ann...),
		})
	}
	return m, nil
}

var errorInterface = reflect.TypeOf((*error)(nil)).Elem()

func (t *AnnotatedType) Class() reflect.Type {
	return t.classPtr
}

func (t *AnnotatedType) Name() string {
	return t.name
}

func (t *AnnotatedType) Abstract() bool {
	return t.abstract
}

func (t *AnnotatedType) Superclass() *AnnotatedType {
	return t.superclass
}

func (t *AnnotatedType) DeclaredAnnotations() AnnotationSet {
	return t.declared
}

/**
Annotations visible on the type including the ones inherited from the
ancestor chain.
*/
func (t *AnnotatedType) Annotations() AnnotationSet {
	set := t.declared
	for clazz := t.superclass; clazz != nil; clazz = clazz.superclass {
		set = set.Merge(clazz.declared)
	}
	return set
}

func (t *AnnotatedType) IsAnnotationPresent(a *Annotation) bool {
	return t.Annotations().Contains(a)
}

func (t *AnnotatedType) Fields() []*AnnotatedField {
	out := make([]*AnnotatedField, len(t.fields))
	copy(out, t.fields)
	return out
}

func (t *AnnotatedType) Methods() []*AnnotatedMethod {
	out := make([]*AnnotatedMethod, len(t.methods))
	copy(out, t.methods)
	return out
}

/**
MetaAnnotatedFields selects the fields carrying at least one annotation
of the given category.
*/
func (t *AnnotatedType) MetaAnnotatedFields(category AnnotationCategory) []*AnnotatedField {
	var out []*AnnotatedField
	for _, f := range t.fields {
		if len(f.annotations.ByCategory(category)) > 0 {
			out = append(out, f)
		}
	}
	return out
}

func (t *AnnotatedType) AnnotatedMethods(marker *Annotation) []*AnnotatedMethod {
	var out []*AnnotatedMethod
	for _, m := range t.methods {
		if m.annotations.Contains(marker) {
			out = append(out, m)
		}
	}
	return out
}

/**
Methods declaring at least one parameter annotated with the marker,
used to discover disposal and observer methods.
*/
func (t *AnnotatedType) MethodsWithAnnotatedParameter(marker *Annotation) []*AnnotatedMethod {
	var out []*AnnotatedMethod
	for _, m := range t.methods {
		if len(m.AnnotatedParameters(marker)) > 0 {
			out = append(out, m)
		}
	}
	return out
}

func (t *AnnotatedType) String() string {
	return t.classPtr.String()
}

func (t *AnnotatedField) Declaring() *AnnotatedType {
	return t.declaring
}

func (t *AnnotatedField) Name() string {
	return t.name
}

func (t *AnnotatedField) Type() reflect.Type {
	return t.fieldType
}

func (t *AnnotatedField) Static() bool {
	return t.static
}

func (t *AnnotatedField) Final() bool {
	return t.final
}

func (t *AnnotatedField) Annotations() AnnotationSet {
	return t.annotations
}

func (t *AnnotatedField) IsAnnotationPresent(a *Annotation) bool {
	return t.annotations.Contains(a)
}

func (t *AnnotatedField) String() string {
	var declaring string
	if t.declaring != nil {
		declaring = t.declaring.String()
	}
	return fmt.Sprintf("field %s.%s", declaring, t.name)
}

func (t *AnnotatedMethod) Declaring() *AnnotatedType {
	return t.declaring
}

func (t *AnnotatedMethod) Name() string {
	return t.name
}

func (t *AnnotatedMethod) Static() bool {
	return t.static
}

func (t *AnnotatedMethod) ReturnType() reflect.Type {
	return t.returnType
}

func (t *AnnotatedMethod) Parameters() []*AnnotatedParameter {
	out := make([]*AnnotatedParameter, len(t.params))
	copy(out, t.params)
	return out
}

func (t *AnnotatedMethod) AnnotatedParameters(marker *Annotation) []*AnnotatedParameter {
	var out []*AnnotatedParameter
	for _, p := range t.params {
		if p.annotations.Contains(marker) {
			out = append(out, p)
		}
	}
	return out
}

func (t *AnnotatedMethod) Annotations() AnnotationSet {
	return t.annotations
}

func (t *AnnotatedMethod) IsAnnotationPresent(a *Annotation) bool {
	return t.annotations.Contains(a)
}

func (t *AnnotatedMethod) String() string {
	var declaring string
	if t.declaring != nil {
		declaring = t.declaring.String()
	}
	var params []string
	for _, p := range t.params {
		params = append(params, p.paramType.String())
	}
	return fmt.Sprintf("method %s.%s(%s)", declaring, t.name, strings.Join(params, ", "))
}

/**
Invoke calls the backing func by reflection, prepending the receiver for
instance methods. A non-nil error result of the func is surfaced as the
returned error.
*/
func (t *AnnotatedMethod) Invoke(receiver interface{}, args []interface{}) (result interface{}, err error) {

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("invoke of %s recovered with error %v", t, r)
		}
	}()

	var in []reflect.Value
	if !t.static {
		if receiver == nil {
			return nil, errors.Errorf("nil receiver for instance %s", t)
		}
		in = append(in, reflect.ValueOf(receiver))
	}
	for i, arg := range args {
		if arg == nil {
			in = append(in, reflect.Zero(t.params[i].paramType))
		} else {
			in = append(in, reflect.ValueOf(arg))
		}
	}

	out := t.fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if t.fn.Type().Out(0).Implements(errorInterface) {
			if e, ok := out[0].Interface().(error); ok && e != nil {
				return nil, e
			}
			return nil, nil
		}
		return out[0].Interface(), nil
	default:
		if e, ok := out[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return out[0].Interface(), nil
	}
}

func (t *AnnotatedParameter) Method() *AnnotatedMethod {
	return t.method
}

func (t *AnnotatedParameter) Index() int {
	return t.index
}

func (t *AnnotatedParameter) Type() reflect.Type {
	return t.paramType
}

func (t *AnnotatedParameter) Annotations() AnnotationSet {
	return t.annotations
}

func (t *AnnotatedParameter) String() string {
	return fmt.Sprintf("parameter %d of %s", t.index, t.method)
}
