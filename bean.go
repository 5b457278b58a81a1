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

	"go.uber.org/zap"
)

/**
classBean is the managed class bean. The whole metadata pipeline runs in
newClassBean during the single-threaded boot phase; afterwards the bean
is immutable and shared without locking.
*/
type classBean struct {

	/**
	Owning manager
	*/
	manager *Manager

	/**
	The annotated item the bean was defined from
	*/
	annotatedItem *AnnotatedType

	/**
	Class of the pointer to the struct
	*/
	classPtr reflect.Type

	name       string
	scope      *Annotation
	deployment *Annotation
	qualifiers AnnotationSet

	/**
	Merged stereotype data of the type
	*/
	merged *mergedStereotypes

	/**
	Fields that are going to be injected
	*/
	injectableFields []*InjectionPoint

	/**
	Initializer methods invoked after field injection
	*/
	initializerMethods []*AnnotatedMethod

	injectionPoints []*InjectionPoint
}

func NewClassBean(manager *Manager, typ *AnnotatedType) (Bean, error) {
	t := &classBean{
		manager:       manager,
		annotatedItem: typ,
		classPtr:      typ.Class(),
	}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *classBean) init() error {
	t.merged = mergeStereotypes(t.annotatedItem.Annotations().ByCategory(CategoryStereotype))
	if err := t.initScope(); err != nil {
		return err
	}
	if err := t.initDeployment(); err != nil {
		return err
	}
	if err := t.checkScopeAllowed(); err != nil {
		return err
	}
	if err := checkBeanImplementation(t.annotatedItem); err != nil {
		return err
	}
	if t.annotatedItem.IsAnnotationPresent(Specializes) {
		if err := preCheckSpecialization(t.annotatedItem); err != nil {
			return err
		}
	}
	t.initQualifiers()
	t.initName()
	if err := t.initInjectionPoints(); err != nil {
		return err
	}
	if err := t.initInitializerMethods(); err != nil {
		return err
	}
	return nil
}

/**
Scope resolution walks the ancestor chain most-derived first. A level
declaring exactly one scope wins if the analyzed type carries that
annotation; a level declaring more than one is a definition error. With
no scope anywhere the stereotype defaults apply, then @Dependent.
*/
func (t *classBean) initScope() error {
	for clazz := t.annotatedItem; clazz != nil; clazz = clazz.Superclass() {
		scopes := clazz.DeclaredAnnotations().ByCategory(CategoryScope)
		if len(scopes) == 1 {
			if t.annotatedItem.IsAnnotationPresent(scopes[0]) {
				t.scope = scopes[0]
				t.manager.logger.Debug("scope specified by annotation",
					zap.String("bean", t.annotatedItem.Name()), zap.String("scope", scopes[0].Name()))
			}
			break
		} else if len(scopes) > 1 {
			return definitionErrorf("at most one scope may be specified on %s", clazz)
		}
	}

	if t.scope == nil {
		scope, err := t.merged.scopeDefault()
		if err != nil {
			return err
		}
		t.scope = scope
	}

	if t.scope == nil {
		t.scope = Dependent
		t.manager.logger.Debug("using default @Dependent scope", zap.String("bean", t.annotatedItem.Name()))
	}
	return nil
}

func (t *classBean) initDeployment() error {
	for clazz := t.annotatedItem; clazz != nil; clazz = clazz.Superclass() {
		deployments := clazz.DeclaredAnnotations().ByCategory(CategoryDeployment)
		if len(deployments) == 1 {
			if t.annotatedItem.IsAnnotationPresent(deployments[0]) {
				t.deployment = deployments[0]
				t.manager.logger.Debug("deployment type specified by annotation",
					zap.String("bean", t.annotatedItem.Name()), zap.String("deployment", deployments[0].Name()))
			}
			break
		} else if len(deployments) > 1 {
			return definitionErrorf("at most one deployment type may be specified on %s", clazz)
		}
	}

	if t.deployment == nil {
		deployment, err := t.merged.deploymentDefault()
		if err != nil {
			return err
		}
		t.deployment = deployment
	}

	if t.deployment == nil {
		t.deployment = Production
		t.manager.logger.Debug("using default @Production deployment type", zap.String("bean", t.annotatedItem.Name()))
	}
	return nil
}

/**
Validate that the resolved scope is allowed by the stereotypes of the
bean, when any of them restricts the supported scopes.
*/
func (t *classBean) checkScopeAllowed() error {
	if len(t.merged.supportedScopes) > 0 {
		for _, s := range t.merged.supportedScopes {
			if s == t.scope {
				return nil
			}
		}
		return definitionErrorf("scope %s is not allowed by the stereotypes of %s", t.scope, t.annotatedItem)
	}
	return nil
}

func (t *classBean) initQualifiers() {
	t.qualifiers = defaultBindings(t.annotatedItem.Annotations().ByCategory(CategoryBinding))
}

func (t *classBean) initName() {
	if t.merged.named {
		t.name = defaultName(t.annotatedItem)
	}
}

/**
Injectable fields are the binding-annotated fields not marked as
producers. Static and final fields are definition errors, checked here
so the violation is reported against the declaring bean.
*/
func (t *classBean) initInjectionPoints() error {
	for _, field := range t.annotatedItem.MetaAnnotatedFields(CategoryBinding) {
		if field.IsAnnotationPresent(Produces) {
			continue
		}
		if err := validateInjectableField(field); err != nil {
			return err
		}
		if err := checkInjectableFieldType(field); err != nil {
			return err
		}
		ip := newFieldInjectionPoint(t, field)
		t.injectableFields = append(t.injectableFields, ip)
		t.injectionPoints = append(t.injectionPoints, ip)
	}
	return nil
}

func (t *classBean) initInitializerMethods() error {
	for _, method := range t.annotatedItem.AnnotatedMethods(Initializer) {
		if err := validateInitializerMethod(method); err != nil {
			return err
		}
		t.initializerMethods = append(t.initializerMethods, method)
		for _, p := range method.Parameters() {
			t.injectionPoints = append(t.injectionPoints, newParameterInjectionPoint(t, p))
		}
	}
	return nil
}

func (t *classBean) Kind() BeanKind {
	return KindManaged
}

func (t *classBean) Name() string {
	return t.name
}

func (t *classBean) Type() reflect.Type {
	return t.classPtr
}

func (t *classBean) AnnotatedItem() *AnnotatedType {
	return t.annotatedItem
}

func (t *classBean) Scope() *Annotation {
	return t.scope
}

func (t *classBean) Deployment() *Annotation {
	return t.deployment
}

func (t *classBean) Qualifiers() AnnotationSet {
	return t.qualifiers
}

func (t *classBean) InjectionPoints() []*InjectionPoint {
	out := make([]*InjectionPoint, len(t.injectionPoints))
	copy(out, t.injectionPoints)
	return out
}

func (t *classBean) InitializerMethods() []*AnnotatedMethod {
	out := make([]*AnnotatedMethod, len(t.initializerMethods))
	copy(out, t.initializerMethods)
	return out
}

/**
Create allocates the instance, injects the bound fields with push/pop
discipline around every field and then calls the initializer methods.
*/
func (t *classBean) Create(cc *CreationalContext) (interface{}, error) {
	instance := reflect.New(t.classPtr.Elem())
	if err := t.injectBoundFields(instance, cc); err != nil {
		return nil, err
	}
	if err := t.callInitializers(instance.Interface(), cc); err != nil {
		return nil, err
	}
	return instance.Interface(), nil
}

func (t *classBean) injectBoundFields(instance reflect.Value, cc *CreationalContext) error {
	value := instance.Elem()
	for _, ip := range t.injectableFields {
		if err := t.injectBoundField(value, ip, cc); err != nil {
			return err
		}
	}
	return nil
}

func (t *classBean) injectBoundField(value reflect.Value, ip *InjectionPoint, cc *CreationalContext) error {
	release := cc.Push(ip)
	defer release()

	ref, err := t.manager.InjectableReference(ip, cc)
	if err != nil {
		return err
	}
	field := value.Field(ip.Field().fieldNum)
	if ref == nil {
		// a producer may legally yield a nil product
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	field.Set(reflect.ValueOf(ref))
	return nil
}

func (t *classBean) callInitializers(instance interface{}, cc *CreationalContext) error {
	for _, method := range t.initializerMethods {
		args, err := resolveParameterArguments(t.manager, t, method.Parameters(), cc)
		if err != nil {
			return err
		}
		if _, err := method.Invoke(instance, args); err != nil {
			return err
		}
	}
	return nil
}

func (t *classBean) Destroy(interface{}) error {
	return nil
}

func (t *classBean) String() string {
	return fmt.Sprintf("managed bean [%v, scope=%s, deployment=%s, qualifiers=%s]", t.classPtr, t.scope, t.deployment, t.qualifiers)
}

/**
Resolves each injectable parameter with push/pop around the lookup.
Marker parameters (@Disposes, @Observes) receive the zero value here;
disposal invocation substitutes the disposed instance itself.
*/
func resolveParameterArguments(manager *Manager, bean Bean, params []*AnnotatedParameter, cc *CreationalContext) ([]interface{}, error) {
	args := make([]interface{}, len(params))
	for i, p := range params {
		if p.Annotations().Contains(Disposes) || p.Annotations().Contains(Observes) {
			continue
		}
		arg, err := resolveParameterArgument(manager, bean, p, cc)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

func resolveParameterArgument(manager *Manager, bean Bean, p *AnnotatedParameter, cc *CreationalContext) (interface{}, error) {
	ip := newParameterInjectionPoint(bean, p)
	release := cc.Push(ip)
	defer release()
	return manager.InjectableReference(ip, cc)
}

/**
Merged stereotype data of a type: the scope and deployment defaults the
stereotypes agree on, the supported scope restriction and the named
flag.
*/
type mergedStereotypes struct {
	possibleScopes      []*Annotation
	possibleDeployments []*Annotation
	supportedScopes     []*Annotation
	named               bool
}

func mergeStereotypes(stereotypes []*Annotation) *mergedStereotypes {
	t := &mergedStereotypes{}
	for _, s := range stereotypes {
		if s.defaultScope != nil {
			t.possibleScopes = append(t.possibleScopes, s.defaultScope)
		}
		if s.defaultDeployment != nil {
			t.possibleDeployments = append(t.possibleDeployments, s.defaultDeployment)
		}
		t.supportedScopes = append(t.supportedScopes, s.supportedScopes...)
		if s.named {
			t.named = true
		}
	}
	return t
}

func (t *mergedStereotypes) scopeDefault() (*Annotation, error) {
	return singleDefault(t.possibleScopes, "scopes")
}

func (t *mergedStereotypes) deploymentDefault() (*Annotation, error) {
	return singleDefault(t.possibleDeployments, "deployment types")
}

func singleDefault(list []*Annotation, what string) (*Annotation, error) {
	if len(list) == 0 {
		return nil, nil
	}
	first := list[0]
	for _, a := range list[1:] {
		if a != first {
			return nil, definitionErrorf("stereotypes declare conflicting default %s %s and %s", what, first, a)
		}
	}
	return first, nil
}

/**
Default bean name is the decapitalized simple name of the type.
*/
func defaultName(typ *AnnotatedType) string {
	name := typ.Name()
	if name == "" {
		return ""
	}
	return strings.ToLower(name[:1]) + name[1:]
}
