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

type courier struct{}

func defineCourier(t *testing.T, annotations ...*weld.Annotation) *weld.AnnotatedType {
	typ, err := weld.DefineType(weld.TypeMeta{
		Class:       reflect.TypeOf((*courier)(nil)),
		Annotations: annotations,
	})
	require.NoError(t, err)
	return typ
}

func TestBeanEqualityByKindTypeAndBindings(t *testing.T) {

	pooled := weld.NewBinding("Pooled")
	manager := weld.NewManager()

	first, err := weld.NewClassBean(manager, defineCourier(t, pooled))
	require.NoError(t, err)
	second, err := weld.NewClassBean(manager, defineCourier(t, pooled))
	require.NoError(t, err)

	require.True(t, weld.Equal(first, second))
	require.True(t, weld.Equal(first, first))
}

func TestBeanEqualityDistinguishesBindings(t *testing.T) {

	pooled := weld.NewBinding("Pooled")
	direct := weld.NewBinding("Direct")
	manager := weld.NewManager()

	first, err := weld.NewClassBean(manager, defineCourier(t, pooled))
	require.NoError(t, err)
	second, err := weld.NewClassBean(manager, defineCourier(t, direct))
	require.NoError(t, err)

	require.False(t, weld.Equal(first, second))
}

func TestBeanEqualityDistinguishesKinds(t *testing.T) {

	manager := weld.NewManager()

	wrapped, err := weld.NewClassBean(manager, defineCourier(t))
	require.NoError(t, err)
	nb, err := weld.NewNewBean(wrapped)
	require.NoError(t, err)

	// same implementation type, different kind and binding set
	require.False(t, weld.Equal(wrapped, nb))

	other, err := weld.NewClassBean(manager, defineCourier(t))
	require.NoError(t, err)
	otherNew, err := weld.NewNewBean(other)
	require.NoError(t, err)
	require.True(t, weld.Equal(nb, otherNew))
}

func TestBeanEqualityNilHandling(t *testing.T) {

	b, err := weld.NewClassBean(weld.NewManager(), defineCourier(t))
	require.NoError(t, err)

	require.True(t, weld.Equal(nil, nil))
	require.False(t, weld.Equal(b, nil))
	require.False(t, weld.Equal(nil, b))
}
