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

package weld_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	weld "github.com/mareknovotny/weld-core"
)

type connection struct {
	open bool
}

type connectionFactory struct {
	Conn *connection
}

func defineFactory(t *testing.T, methods []weld.MethodMeta, fields ...weld.FieldMeta) *weld.AnnotatedType {
	typ, err := weld.DefineType(weld.TypeMeta{
		Class:   reflect.TypeOf((*connectionFactory)(nil)),
		Fields:  fields,
		Methods: methods,
	})
	require.NoError(t, err)
	return typ
}

func TestNullDeclaringBeanForInstanceProducerFails(t *testing.T) {

	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory) *connection { return &connection{open: true} },
			Annotations: []*weld.Annotation{weld.Produces},
		},
	})
	method := typ.AnnotatedMethods(weld.Produces)[0]

	factory := weld.NewMethodProducerFactory(weld.NewManager(), nil, method)
	_, err := factory.CreateProducer(nil)
	require.Error(t, err)
	require.True(t, weld.IsIllegalArgument(err))
	require.Contains(t, err.Error(), "null declaring bean")
}

func TestCreateProducerWrapsUnsatisfiedDependency(t *testing.T) {

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory, r *repository) *connection { return &connection{} },
			Annotations: []*weld.Annotation{weld.Produces},
		},
	})
	declaring, err := manager.AddClass(typ)
	require.NoError(t, err)

	// no bean satisfies the *repository parameter
	factory := weld.NewMethodProducerFactory(manager, declaring, typ.AnnotatedMethods(weld.Produces)[0])
	_, err = factory.CreateProducer(nil)
	require.Error(t, err)
	require.True(t, weld.IsIllegalArgument(err))
	require.Contains(t, err.Error(), "unsatisfied dependency")
}

func TestValidatedProducerProduces(t *testing.T) {

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory) *connection { return &connection{open: true} },
			Annotations: []*weld.Annotation{weld.Produces},
		},
	})
	declaring, err := manager.AddClass(typ)
	require.NoError(t, err)

	factory := weld.NewMethodProducerFactory(manager, declaring, typ.AnnotatedMethods(weld.Produces)[0])
	producer, err := factory.CreateProducer(nil)
	require.NoError(t, err)

	instance, err := producer.Produce(nil)
	require.NoError(t, err)
	conn, ok := instance.(*connection)
	require.True(t, ok)
	require.True(t, conn.open)
}

func TestProducerScopeAndQualifiersFromMember(t *testing.T) {

	requestScoped := weld.NewScope("RequestScoped", true)
	pooled := weld.NewBinding("Pooled")

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory) *connection { return &connection{} },
			Annotations: []*weld.Annotation{weld.Produces, requestScoped, pooled},
		},
	})
	_, err := manager.AddClass(typ)
	require.NoError(t, err)

	beans := manager.ResolveBeans(reflect.TypeOf((*connection)(nil)), pooled)
	require.Len(t, beans, 1)
	require.Equal(t, weld.KindProducerMethod, beans[0].Kind())
	require.Equal(t, requestScoped, beans[0].Scope())
	require.True(t, beans[0].Qualifiers().Contains(pooled))
	require.False(t, beans[0].Qualifiers().Contains(weld.Current))
}

type disposalHolder interface {
	DisposalMethod() *weld.DisposalMethod
}

func TestDisposalMethodPairedByQualifiers(t *testing.T) {

	pooled := weld.NewBinding("Pooled")

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory) *connection { return &connection{open: true} },
			Annotations: []*weld.Annotation{weld.Produces, pooled},
		},
		{
			Name: "close",
			Func: func(f *connectionFactory, c *connection) {},
			Parameters: []weld.ParameterMeta{
				{Annotations: []*weld.Annotation{weld.Disposes, pooled}},
			},
		},
	})
	_, err := manager.AddClass(typ)
	require.NoError(t, err)

	beans := manager.ResolveBeans(reflect.TypeOf((*connection)(nil)), pooled)
	require.Len(t, beans, 1)
	holder, ok := beans[0].(disposalHolder)
	require.True(t, ok)
	require.NotNil(t, holder.DisposalMethod())
}

func TestDisposalMethodQualifierMismatch(t *testing.T) {

	pooled := weld.NewBinding("Pooled")
	direct := weld.NewBinding("Direct")

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory) *connection { return &connection{} },
			Annotations: []*weld.Annotation{weld.Produces, pooled},
		},
		{
			Name: "close",
			Func: func(f *connectionFactory, c *connection) {},
			Parameters: []weld.ParameterMeta{
				{Annotations: []*weld.Annotation{weld.Disposes, direct}},
			},
		},
	})
	_, err := manager.AddClass(typ)
	require.NoError(t, err)

	beans := manager.ResolveBeans(reflect.TypeOf((*connection)(nil)), pooled)
	require.Len(t, beans, 1)
	holder, ok := beans[0].(disposalHolder)
	require.True(t, ok)
	require.Nil(t, holder.DisposalMethod())
}

func TestDisposalSubsetBindingsDoNotMatch(t *testing.T) {

	pooled := weld.NewBinding("Pooled")
	direct := weld.NewBinding("Direct")

	// disposes {Pooled}, produces {Pooled, Direct}; whole sets are
	// compared, so there is no pairing
	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory) *connection { return &connection{} },
			Annotations: []*weld.Annotation{weld.Produces, pooled, direct},
		},
		{
			Name: "close",
			Func: func(f *connectionFactory, c *connection) {},
			Parameters: []weld.ParameterMeta{
				{Annotations: []*weld.Annotation{weld.Disposes, pooled}},
			},
		},
	})
	_, err := manager.AddClass(typ)
	require.NoError(t, err)

	beans := manager.ResolveBeans(reflect.TypeOf((*connection)(nil)), pooled, direct)
	require.Len(t, beans, 1)
	holder, ok := beans[0].(disposalHolder)
	require.True(t, ok)
	require.Nil(t, holder.DisposalMethod())
}

func TestDestroyInvokesDisposalMethod(t *testing.T) {

	var disposed []*connection

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory) *connection { return &connection{open: true} },
			Annotations: []*weld.Annotation{weld.Produces},
		},
		{
			Name: "close",
			Func: func(f *connectionFactory, c *connection) {
				c.open = false
				disposed = append(disposed, c)
			},
			Parameters: []weld.ParameterMeta{
				{Annotations: []*weld.Annotation{weld.Disposes}},
			},
		},
	})
	_, err := manager.AddClass(typ)
	require.NoError(t, err)

	beans := manager.ResolveBeans(reflect.TypeOf((*connection)(nil)))
	require.Len(t, beans, 1)

	instance, err := beans[0].Create(manager.NewCreationalContext())
	require.NoError(t, err)
	conn := instance.(*connection)
	require.True(t, conn.open)

	require.NoError(t, beans[0].Destroy(conn))
	require.Len(t, disposed, 1)
	require.Same(t, conn, disposed[0])
	require.False(t, conn.open)
}

type resource interface {
	Release() error
}

type resourceConsumer struct {
	Res resource
}

func TestNilProductInjectedAsZeroValue(t *testing.T) {

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "acquire",
			Func:        func(f *connectionFactory) resource { return nil },
			Annotations: []*weld.Annotation{weld.Produces},
		},
	})
	_, err := manager.AddClass(typ)
	require.NoError(t, err)

	consumerType, err := weld.DefineType(weld.TypeMeta{
		Class: reflect.TypeOf((*resourceConsumer)(nil)),
		Fields: []weld.FieldMeta{
			{Name: "Res", Annotations: []*weld.Annotation{weld.Current}},
		},
	})
	require.NoError(t, err)
	b, err := manager.AddClass(consumerType)
	require.NoError(t, err)

	cc := manager.NewCreationalContext()
	instance, err := b.Create(cc)
	require.NoError(t, err)
	require.Equal(t, 0, cc.Depth())

	consumer := instance.(*resourceConsumer)
	require.Nil(t, consumer.Res)
}

func TestProducerFieldBean(t *testing.T) {

	manager := weld.NewManager()
	typ := defineFactory(t,
		[]weld.MethodMeta{
			{
				Name:        "setup",
				Func:        func(f *connectionFactory) { f.Conn = &connection{open: true} },
				Annotations: []*weld.Annotation{weld.Initializer},
			},
		},
		weld.FieldMeta{Name: "Conn", Annotations: []*weld.Annotation{weld.Produces}},
	)
	_, err := manager.AddClass(typ)
	require.NoError(t, err)

	beans := manager.ResolveBeans(reflect.TypeOf((*connection)(nil)))
	require.Len(t, beans, 1)
	require.Equal(t, weld.KindProducerField, beans[0].Kind())

	instance, err := beans[0].Create(manager.NewCreationalContext())
	require.NoError(t, err)
	conn, ok := instance.(*connection)
	require.True(t, ok)
	require.True(t, conn.open)
}
