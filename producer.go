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

	"go.uber.org/zap"
)

/**
MethodProducerFactory builds producers from one producer method. The
exported CreateProducer is the validating path; createProducer is the
internal unvalidated path reserved for producer-method beans whose
injection points go through the deployment validation pass anyway,
skipping the duplicate work.
*/
type MethodProducerFactory struct {
	manager       *Manager
	declaringBean Bean
	method        *AnnotatedMethod
}

func NewMethodProducerFactory(manager *Manager, declaringBean Bean, method *AnnotatedMethod) *MethodProducerFactory {
	return &MethodProducerFactory{manager: manager, declaringBean: declaringBean, method: method}
}

/**
CreateProducer validates the member, builds the producer and asks the
injection-target service to check its injection points. Every failure
on this path, definition error or unexpected fault alike, is normalized
into an IllegalArgumentError. No partially validated producer is ever
returned.
*/
func (t *MethodProducerFactory) CreateProducer(bean Bean) (Producer, error) {
	if t.declaringBean == nil && !t.method.Static() {
		return nil, illegalArgumentErrorf("null declaring bean for instance %s", t.method)
	}
	if err := validateAnnotatedMember(t.method); err != nil {
		return nil, illegalArgument(err)
	}
	producer, err := t.createProducer(t.declaringBean, bean, nil)
	if err != nil {
		return nil, illegalArgument(err)
	}
	its, err := t.manager.injectionTargetService()
	if err != nil {
		return nil, illegalArgument(err)
	}
	if err := its.ValidateProducer(producer); err != nil {
		return nil, illegalArgument(err)
	}
	return producer, nil
}

/**
Producers returned from this path are not validated. Internal use only.
*/
func (t *MethodProducerFactory) createProducer(declaringBean, bean Bean, disposal *DisposalMethod) (Producer, error) {
	transformer, err := t.manager.memberTransformer()
	if err != nil {
		return nil, err
	}
	enhanced, err := transformer.LoadEnhancedMethod(t.method, t.manager.ID())
	if err != nil {
		return nil, err
	}
	return &methodProducer{
		method:        t.method,
		enhanced:      enhanced,
		manager:       t.manager,
		declaringBean: declaringBean,
		bean:          bean,
		disposal:      disposal,
	}, nil
}

type methodProducer struct {
	method        *AnnotatedMethod
	enhanced      *EnhancedMethod
	manager       *Manager
	declaringBean Bean
	bean          Bean
	disposal      *DisposalMethod
}

func (t *methodProducer) Produce(cc *CreationalContext) (interface{}, error) {
	if cc == nil {
		cc = t.manager.NewCreationalContext()
	}
	var receiver interface{}
	if !t.method.Static() {
		var err error
		receiver, err = t.manager.GetReference(t.declaringBean, cc)
		if err != nil {
			return nil, err
		}
	}
	args, err := resolveParameterArguments(t.manager, t.bean, t.method.Parameters(), cc)
	if err != nil {
		return nil, err
	}
	return t.method.Invoke(receiver, args)
}

func (t *methodProducer) Dispose(instance interface{}) error {
	if t.disposal == nil {
		return nil
	}
	return t.disposal.Invoke(instance, t.manager.NewCreationalContext())
}

func (t *methodProducer) InjectionPoints() []*InjectionPoint {
	return t.enhanced.InjectionPoints(t.bean)
}

func (t *methodProducer) Annotated() AnnotatedMember {
	return t.method
}

/**
FieldProducerFactory is the field counterpart. A producer field has no
parameters, so the producer carries no injection points of its own.
*/
type FieldProducerFactory struct {
	manager       *Manager
	declaringBean Bean
	field         *AnnotatedField
}

func NewFieldProducerFactory(manager *Manager, declaringBean Bean, field *AnnotatedField) *FieldProducerFactory {
	return &FieldProducerFactory{manager: manager, declaringBean: declaringBean, field: field}
}

func (t *FieldProducerFactory) CreateProducer(bean Bean) (Producer, error) {
	if t.declaringBean == nil && !t.field.Static() {
		return nil, illegalArgumentErrorf("null declaring bean for instance %s", t.field)
	}
	if err := validateAnnotatedMember(t.field); err != nil {
		return nil, illegalArgument(err)
	}
	producer, err := t.createProducer(t.declaringBean, bean, nil)
	if err != nil {
		return nil, illegalArgument(err)
	}
	return producer, nil
}

func (t *FieldProducerFactory) createProducer(declaringBean, bean Bean, disposal *DisposalMethod) (Producer, error) {
	transformer, err := t.manager.memberTransformer()
	if err != nil {
		return nil, err
	}
	enhanced, err := transformer.LoadEnhancedField(t.field, t.manager.ID())
	if err != nil {
		return nil, err
	}
	return &fieldProducer{
		field:         t.field,
		enhanced:      enhanced,
		manager:       t.manager,
		declaringBean: declaringBean,
		bean:          bean,
		disposal:      disposal,
	}, nil
}

type fieldProducer struct {
	field         *AnnotatedField
	enhanced      *EnhancedField
	manager       *Manager
	declaringBean Bean
	bean          Bean
	disposal      *DisposalMethod
}

/**
Produce reads the field value from the declaring bean instance. Go has
no static fields, so a declaring instance backs the read in every case
it is available.
*/
func (t *fieldProducer) Produce(cc *CreationalContext) (interface{}, error) {
	if cc == nil {
		cc = t.manager.NewCreationalContext()
	}
	if t.declaringBean == nil {
		return nil, definitionErrorf("no declaring instance to read %s from", t.field)
	}
	receiver, err := t.manager.GetReference(t.declaringBean, cc)
	if err != nil {
		return nil, err
	}
	value := reflect.ValueOf(receiver).Elem().Field(t.field.fieldNum)
	return value.Interface(), nil
}

func (t *fieldProducer) Dispose(instance interface{}) error {
	if t.disposal == nil {
		return nil
	}
	return t.disposal.Invoke(instance, t.manager.NewCreationalContext())
}

func (t *fieldProducer) InjectionPoints() []*InjectionPoint {
	return nil
}

func (t *fieldProducer) Annotated() AnnotatedMember {
	return t.field
}

/**
producerMethodBean is the bean defined by a producer method of a
managed bean. Its scope and deployment type resolve from the member
annotations, falling back to the member stereotypes and then the
system defaults; bindings come from the member, defaulting to @Current.
*/
type producerMethodBean struct {
	manager       *Manager
	declaringBean Bean
	method        *AnnotatedMethod
	productType   reflect.Type
	scope         *Annotation
	deployment    *Annotation
	qualifiers    AnnotationSet
	producer      Producer
	disposal      *DisposalMethod
	injectionPts  []*InjectionPoint
}

func NewProducerMethodBean(manager *Manager, declaringBean Bean, method *AnnotatedMethod) (Bean, error) {
	if err := validateAnnotatedMember(method); err != nil {
		return nil, err
	}
	if !method.Static() && declaringBean == nil {
		return nil, definitionErrorf("declaring bean required for instance %s", method)
	}
	productType := method.ReturnType()
	if productType == nil {
		return nil, definitionErrorf("producer %s must declare a product type", method)
	}
	if kind := productType.Kind(); kind != reflect.Ptr && kind != reflect.Interface {
		return nil, definitionErrorf("producer %s can produce ptr or interface, but product type is '%v'", method, productType)
	}

	t := &producerMethodBean{
		manager:       manager,
		declaringBean: declaringBean,
		method:        method,
		productType:   productType,
	}
	if err := t.initScope(); err != nil {
		return nil, err
	}
	if err := t.initDeployment(); err != nil {
		return nil, err
	}
	t.qualifiers = defaultBindings(method.Annotations().ByCategory(CategoryBinding))

	if err := t.initDisposalMethod(); err != nil {
		return nil, err
	}

	factory := NewMethodProducerFactory(manager, declaringBean, method)
	producer, err := factory.createProducer(declaringBean, t, t.disposal)
	if err != nil {
		return nil, err
	}
	t.producer = producer
	t.injectionPts = producer.InjectionPoints()

	return t, nil
}

func (t *producerMethodBean) initScope() error {
	scopes := t.method.Annotations().ByCategory(CategoryScope)
	if len(scopes) > 1 {
		return definitionErrorf("at most one scope may be specified on %s", t.method)
	}
	if len(scopes) == 1 {
		t.scope = scopes[0]
		return nil
	}
	merged := mergeStereotypes(t.method.Annotations().ByCategory(CategoryStereotype))
	scope, err := merged.scopeDefault()
	if err != nil {
		return err
	}
	if scope != nil {
		t.scope = scope
		return nil
	}
	t.scope = Dependent
	return nil
}

func (t *producerMethodBean) initDeployment() error {
	deployments := t.method.Annotations().ByCategory(CategoryDeployment)
	if len(deployments) > 1 {
		return definitionErrorf("at most one deployment type may be specified on %s", t.method)
	}
	if len(deployments) == 1 {
		t.deployment = deployments[0]
		return nil
	}
	merged := mergeStereotypes(t.method.Annotations().ByCategory(CategoryStereotype))
	deployment, err := merged.deploymentDefault()
	if err != nil {
		return err
	}
	if deployment != nil {
		t.deployment = deployment
		return nil
	}
	t.deployment = Production
	return nil
}

/**
At most one disposal method per (product type, bindings) pair. Zero is
fine, the product is then never disposed; several are a definition
error.
*/
func (t *producerMethodBean) initDisposalMethod() error {
	matches := t.manager.ResolveDisposalMethods(t.productType, t.qualifiers.List()...)
	switch len(matches) {
	case 0:
		return nil
	case 1:
		t.disposal = matches[0]
		t.manager.logger.Debug("disposal method paired",
			zap.String("producer", t.method.String()), zap.String("disposal", matches[0].String()))
		return nil
	default:
		return definitionErrorf("producer %s resolves %d disposal methods, at most one is allowed", t.method, len(matches))
	}
}

func (t *producerMethodBean) Kind() BeanKind {
	return KindProducerMethod
}

func (t *producerMethodBean) Name() string {
	return ""
}

func (t *producerMethodBean) Type() reflect.Type {
	return t.productType
}

func (t *producerMethodBean) Scope() *Annotation {
	return t.scope
}

func (t *producerMethodBean) Deployment() *Annotation {
	return t.deployment
}

func (t *producerMethodBean) Qualifiers() AnnotationSet {
	return t.qualifiers
}

func (t *producerMethodBean) InjectionPoints() []*InjectionPoint {
	out := make([]*InjectionPoint, len(t.injectionPts))
	copy(out, t.injectionPts)
	return out
}

func (t *producerMethodBean) Producer() Producer {
	return t.producer
}

func (t *producerMethodBean) DisposalMethod() *DisposalMethod {
	return t.disposal
}

func (t *producerMethodBean) Create(cc *CreationalContext) (interface{}, error) {
	return t.producer.Produce(cc)
}

func (t *producerMethodBean) Destroy(instance interface{}) error {
	return t.producer.Dispose(instance)
}

func (t *producerMethodBean) String() string {
	return fmt.Sprintf("producer method bean [%s, product=%v, scope=%s, qualifiers=%s]", t.method, t.productType, t.scope, t.qualifiers)
}

/**
producerFieldBean is the field counterpart of the producer method bean.
*/
type producerFieldBean struct {
	manager       *Manager
	declaringBean Bean
	field         *AnnotatedField
	productType   reflect.Type
	scope         *Annotation
	deployment    *Annotation
	qualifiers    AnnotationSet
	producer      Producer
	disposal      *DisposalMethod
}

func NewProducerFieldBean(manager *Manager, declaringBean Bean, field *AnnotatedField) (Bean, error) {
	if err := validateAnnotatedMember(field); err != nil {
		return nil, err
	}
	if !field.Static() && declaringBean == nil {
		return nil, definitionErrorf("declaring bean required for instance %s", field)
	}
	productType := field.Type()
	if kind := productType.Kind(); kind != reflect.Ptr && kind != reflect.Interface {
		return nil, definitionErrorf("producer %s can produce ptr or interface, but product type is '%v'", field, productType)
	}

	scopes := field.Annotations().ByCategory(CategoryScope)
	if len(scopes) > 1 {
		return nil, definitionErrorf("at most one scope may be specified on %s", field)
	}
	deployments := field.Annotations().ByCategory(CategoryDeployment)
	if len(deployments) > 1 {
		return nil, definitionErrorf("at most one deployment type may be specified on %s", field)
	}

	t := &producerFieldBean{
		manager:       manager,
		declaringBean: declaringBean,
		field:         field,
		productType:   productType,
		scope:         Dependent,
		deployment:    Production,
		qualifiers:    defaultBindings(field.Annotations().ByCategory(CategoryBinding)),
	}
	if len(scopes) == 1 {
		t.scope = scopes[0]
	}
	if len(deployments) == 1 {
		t.deployment = deployments[0]
	}

	matches := manager.ResolveDisposalMethods(productType, t.qualifiers.List()...)
	if len(matches) > 1 {
		return nil, definitionErrorf("producer %s resolves %d disposal methods, at most one is allowed", field, len(matches))
	}
	if len(matches) == 1 {
		t.disposal = matches[0]
	}

	factory := NewFieldProducerFactory(manager, declaringBean, field)
	producer, err := factory.createProducer(declaringBean, t, t.disposal)
	if err != nil {
		return nil, err
	}
	t.producer = producer

	return t, nil
}

func (t *producerFieldBean) Kind() BeanKind {
	return KindProducerField
}

func (t *producerFieldBean) Name() string {
	return ""
}

func (t *producerFieldBean) Type() reflect.Type {
	return t.productType
}

func (t *producerFieldBean) Scope() *Annotation {
	return t.scope
}

func (t *producerFieldBean) Deployment() *Annotation {
	return t.deployment
}

func (t *producerFieldBean) Qualifiers() AnnotationSet {
	return t.qualifiers
}

func (t *producerFieldBean) InjectionPoints() []*InjectionPoint {
	return nil
}

func (t *producerFieldBean) Producer() Producer {
	return t.producer
}

func (t *producerFieldBean) Create(cc *CreationalContext) (interface{}, error) {
	return t.producer.Produce(cc)
}

func (t *producerFieldBean) Destroy(instance interface{}) error {
	return t.producer.Dispose(instance)
}

func (t *producerFieldBean) String() string {
	return fmt.Sprintf("producer field bean [%s, product=%v, scope=%s, qualifiers=%s]", t.field, t.productType, t.scope, t.qualifiers)
}
