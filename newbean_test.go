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

type mailer struct{}

type orderProcessor struct {
	Mailer *mailer
}

type initializerHolder interface {
	InitializerMethods() []*weld.AnnotatedMethod
}

func defineOrderProcessor(t *testing.T, annotations ...*weld.Annotation) *weld.AnnotatedType {
	typ, err := weld.DefineType(weld.TypeMeta{
		Class:       reflect.TypeOf((*orderProcessor)(nil)),
		Annotations: annotations,
		Fields: []weld.FieldMeta{
			{Name: "Mailer", Annotations: []*weld.Annotation{weld.Current}},
		},
		Methods: []weld.MethodMeta{
			{
				Name:        "start",
				Func:        func(p *orderProcessor) {},
				Annotations: []*weld.Annotation{weld.Initializer},
			},
		},
	})
	require.NoError(t, err)
	return typ
}

func TestNewBeanIsAlwaysDependent(t *testing.T) {

	sessionScoped := weld.NewScope("SessionScoped", true)

	wrapped, err := weld.NewClassBean(weld.NewManager(), defineOrderProcessor(t, sessionScoped))
	require.NoError(t, err)
	require.Equal(t, sessionScoped, wrapped.Scope())

	nb, err := weld.NewNewBean(wrapped)
	require.NoError(t, err)
	require.Equal(t, weld.KindNew, nb.Kind())
	require.Equal(t, weld.Dependent, nb.Scope())
}

func TestNewBeanHasNewBindingOnly(t *testing.T) {

	pooled := weld.NewBinding("Pooled")

	wrapped, err := weld.NewClassBean(weld.NewManager(), defineOrderProcessor(t, pooled))
	require.NoError(t, err)
	require.True(t, wrapped.Qualifiers().Contains(pooled))

	nb, err := weld.NewNewBean(wrapped)
	require.NoError(t, err)
	require.Equal(t, 1, nb.Qualifiers().Size())
	require.True(t, nb.Qualifiers().Contains(weld.New))
	require.False(t, nb.Qualifiers().Contains(pooled))
	require.False(t, nb.Qualifiers().Contains(weld.Current))
}

func TestNewBeanHasNoName(t *testing.T) {

	named := weld.NewStereotype("Named", weld.WithNamed())

	wrapped, err := weld.NewClassBean(weld.NewManager(), defineOrderProcessor(t, named))
	require.NoError(t, err)
	require.Equal(t, "orderProcessor", wrapped.Name())

	nb, err := weld.NewNewBean(wrapped)
	require.NoError(t, err)
	require.Equal(t, "", nb.Name())
}

func TestNewBeanSharesWrappedMetadata(t *testing.T) {

	wrapped, err := weld.NewClassBean(weld.NewManager(), defineOrderProcessor(t))
	require.NoError(t, err)

	nb, err := weld.NewNewBean(wrapped)
	require.NoError(t, err)
	require.Equal(t, wrapped.Type(), nb.Type())
	require.Equal(t, wrapped.InjectionPoints(), nb.InjectionPoints())

	wrappedInit := wrapped.(initializerHolder).InitializerMethods()
	newInit := nb.(initializerHolder).InitializerMethods()
	require.Equal(t, wrappedInit, newInit)
	require.Len(t, newInit, 1)
}

func TestNewBeanHasNoDisposalMethods(t *testing.T) {

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name: "close",
			Func: func(f *connectionFactory, c *connection) {},
			Parameters: []weld.ParameterMeta{
				{Annotations: []*weld.Annotation{weld.Disposes}},
			},
		},
	})
	_, err := manager.AddClass(typ)
	require.NoError(t, err)

	connType := reflect.TypeOf((*connection)(nil))
	require.Len(t, manager.ResolveDisposalMethods(connType), 1)
	require.Empty(t, manager.ResolveDisposalMethods(connType, weld.New))
}

func TestNewBeanRequiresClassBean(t *testing.T) {

	manager := weld.NewManager()
	typ := defineFactory(t, []weld.MethodMeta{
		{
			Name:        "open",
			Func:        func(f *connectionFactory) *connection { return &connection{} },
			Annotations: []*weld.Annotation{weld.Produces},
		},
	})
	declaring, err := manager.AddClass(typ)
	require.NoError(t, err)

	producerBean, err := weld.NewProducerMethodBean(manager, declaring, typ.AnnotatedMethods(weld.Produces)[0])
	require.NoError(t, err)

	_, err = weld.NewNewBean(producerBean)
	require.Error(t, err)
	require.True(t, weld.IsIllegalArgument(err))
}
