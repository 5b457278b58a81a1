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

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"

	weld "github.com/mareknovotny/weld-core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// non-zero size so distinct allocations have distinct addresses,
// keeping the Same/NotSame identity assertions meaningful
type invoiceStore struct{ _ byte }

func (t *invoiceStore) Persist() error {
	return nil
}

type persister interface {
	Persist() error
}

type invoiceService struct {
	Store *invoiceStore
}

func defineInvoiceService(t *testing.T, annotations ...*weld.Annotation) *weld.AnnotatedType {
	typ, err := weld.DefineType(weld.TypeMeta{
		Class:       reflect.TypeOf((*invoiceService)(nil)),
		Annotations: annotations,
		Fields: []weld.FieldMeta{
			{Name: "Store", Annotations: []*weld.Annotation{weld.Current}},
		},
	})
	require.NoError(t, err)
	return typ
}

func TestManagersHaveDistinctIDs(t *testing.T) {
	first := weld.NewManager()
	second := weld.NewManager()
	require.NotEmpty(t, first.ID())
	require.NotEqual(t, first.ID(), second.ID())

	fixed := weld.NewManager(weld.WithID("fixed"))
	require.Equal(t, "fixed", fixed.ID())
}

func TestDeploySucceeds(t *testing.T) {

	manager := weld.NewManager()

	storeType, err := weld.DefineType(weld.TypeMeta{
		Class: reflect.TypeOf((*invoiceStore)(nil)),
	})
	require.NoError(t, err)
	_, err = manager.AddClass(storeType)
	require.NoError(t, err)

	_, err = manager.AddClass(defineInvoiceService(t))
	require.NoError(t, err)

	require.NoError(t, manager.Deploy())
}

func TestDeployRefusesUnsatisfiedDependency(t *testing.T) {

	manager := weld.NewManager()
	_, err := manager.AddClass(defineInvoiceService(t))
	require.NoError(t, err)

	err = manager.Deploy()
	require.Error(t, err)
	require.Contains(t, err.Error(), "deployment refused")
	require.Contains(t, err.Error(), "unsatisfied dependency")
}

func TestDeployAggregatesProblems(t *testing.T) {

	requestScoped := weld.NewScope("RequestScoped", true)
	sessionScoped := weld.NewScope("SessionScoped", true)

	manager := weld.NewManager()

	// two scopes on one type, recorded as a problem instead of aborting
	badType := defineChain(t, nil, nil,
		[]*weld.Annotation{requestScoped, sessionScoped})
	_, err := manager.AddClass(badType)
	require.Error(t, err)

	// unsatisfied field dependency, found during deployment validation
	_, err = manager.AddClass(defineInvoiceService(t))
	require.NoError(t, err)

	err = manager.Deploy()
	require.Error(t, err)
	problems := multierr.Errors(errors.Cause(err))
	require.Len(t, problems, 2)
}

func TestLookupByName(t *testing.T) {

	named := weld.NewStereotype("Named", weld.WithNamed())

	manager := weld.NewManager()
	_, err := manager.AddClass(defineInvoiceService(t, named))
	require.NoError(t, err)

	found := manager.Lookup("invoiceService")
	require.Len(t, found, 1)
	require.Equal(t, "invoiceService", found[0].Name())

	require.Empty(t, manager.Lookup("unknown"))
}

func TestNormalScopedReferenceIsShared(t *testing.T) {

	sessionScoped := weld.NewScope("SessionScoped", true)

	manager := weld.NewManager()

	storeType, err := weld.DefineType(weld.TypeMeta{
		Class:       reflect.TypeOf((*invoiceStore)(nil)),
		Annotations: []*weld.Annotation{sessionScoped},
	})
	require.NoError(t, err)
	b, err := manager.AddClass(storeType)
	require.NoError(t, err)

	first, err := manager.GetReference(b, nil)
	require.NoError(t, err)
	second, err := manager.GetReference(b, nil)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestDependentReferenceIsFresh(t *testing.T) {

	manager := weld.NewManager()

	storeType, err := weld.DefineType(weld.TypeMeta{
		Class: reflect.TypeOf((*invoiceStore)(nil)),
	})
	require.NoError(t, err)
	b, err := manager.AddClass(storeType)
	require.NoError(t, err)

	first, err := manager.GetReference(b, nil)
	require.NoError(t, err)
	second, err := manager.GetReference(b, nil)
	require.NoError(t, err)
	require.NotSame(t, first, second)
}

func TestResolveBeansByExactTypeAndByInterface(t *testing.T) {

	manager := weld.NewManager()

	storeType, err := weld.DefineType(weld.TypeMeta{
		Class: reflect.TypeOf((*invoiceStore)(nil)),
	})
	require.NoError(t, err)
	b, err := manager.AddClass(storeType)
	require.NoError(t, err)

	// exact pointer type goes through the type index
	byType := manager.ResolveBeans(reflect.TypeOf((*invoiceStore)(nil)))
	require.Len(t, byType, 1)
	require.True(t, weld.Equal(b, byType[0]))

	// interface types scan all beans for assignability
	byIface := manager.ResolveBeans(reflect.TypeOf((*persister)(nil)).Elem())
	require.Len(t, byIface, 1)
	require.True(t, weld.Equal(b, byIface[0]))

	require.Empty(t, manager.ResolveBeans(reflect.TypeOf((*invoiceService)(nil))))
}

func TestGetService(t *testing.T) {

	manager := weld.NewManager()

	transformer, ok := weld.GetService[*weld.MemberTransformer](manager)
	require.True(t, ok)
	require.NotNil(t, transformer)

	_, ok = weld.GetService[*weld.Manager](manager)
	require.False(t, ok)
}

func TestGetBean(t *testing.T) {

	manager := weld.NewManager()

	storeType, err := weld.DefineType(weld.TypeMeta{
		Class: reflect.TypeOf((*invoiceStore)(nil)),
	})
	require.NoError(t, err)
	_, err = manager.AddClass(storeType)
	require.NoError(t, err)

	store, ok := weld.GetBean[*invoiceStore](manager, reflect.TypeOf((*invoiceStore)(nil)))
	require.True(t, ok)
	require.NotNil(t, store)

	_, ok = weld.GetBean[*invoiceService](manager, reflect.TypeOf((*invoiceService)(nil)))
	require.False(t, ok)
}
